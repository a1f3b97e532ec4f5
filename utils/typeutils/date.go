/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package typeutils

import (
	"fmt"
	"time"

	"github.com/datazip-inc/kwanko/constants"
)

// Date is a calendar day rendered as YYYY-MM-DD
type Date string

func NewDate(t time.Time) Date {
	return Date(t.Format(constants.DateLayout))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) Time() (time.Time, error) {
	return time.Parse(constants.DateLayout, string(d))
}

// ParseDatePrefix reads the YYYY-MM-DD prefix of a date or timestamp (e.g. "2023-08-15 10:00:00")
func ParseDatePrefix(value string) (Date, error) {
	if len(value) < len(constants.DateLayout) {
		return "", fmt.Errorf("value[%s] does not start with a %s date", value, constants.DateLayout)
	}

	prefix := value[:len(constants.DateLayout)]
	if _, err := time.Parse(constants.DateLayout, prefix); err != nil {
		return "", fmt.Errorf("value[%s] does not start with a %s date: %s", value, constants.DateLayout, err)
	}
	return Date(prefix), nil
}

// CompactToDate turns YYYYMMDD into YYYY-MM-DD
func CompactToDate(value string) (Date, error) {
	parsed, err := time.Parse(constants.CompactDateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid compact date[%s]: %s", value, err)
	}
	return NewDate(parsed), nil
}

// MonthStart returns the first day of the month of a YYYYMM or YYYYMMDD value
func MonthStart(value string) (Date, error) {
	layout := constants.CompactDateLayout
	if len(value) == len(constants.CompactMonthLayout) {
		layout = constants.CompactMonthLayout
	}

	parsed, err := time.Parse(layout, value)
	if err != nil {
		return "", fmt.Errorf("invalid compact month[%s]: %s", value, err)
	}
	return NewDate(time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
}

// MaxDate returns the later of two dates; both must be YYYY-MM-DD so that they sort lexically
func MaxDate(a, b Date) Date {
	if a > b {
		return a
	}
	return b
}
