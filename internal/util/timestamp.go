package util

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"
)

// timeConverter matches hosted timestamp types such as *timestamppb.Timestamp
type timeConverter interface {
	AsTime() time.Time
}

// dateConverter matches client SDK timestamp wrappers exposing ToDate
type dateConverter interface {
	ToDate() time.Time
}

// secondsHolder matches serialized timestamps exposing epoch seconds
type secondsHolder interface {
	GetSeconds() int64
}

// seconds outside this range overflow when converted to milliseconds
const (
	maxEpochSeconds = math.MaxInt64 / 1000
	minEpochSeconds = math.MinInt64 / 1000
)

// timestampLayouts are tried in order when normalizing strings
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts the timestamp shapes clients and providers send
// into a time.Time. The boolean is false when no date can be derived; the
// returned time is then the zero value and must not be used.
//
// Shapes are checked in priority order: conversion capability, concrete time,
// serialized seconds, then strings and epoch-millisecond numbers.
func NormalizeTimestamp(v any) (time.Time, bool) {
	if isNil(v) {
		return time.Time{}, false
	}

	if c, ok := v.(timeConverter); ok {
		return c.AsTime(), true
	}
	if c, ok := v.(dateConverter); ok {
		return c.ToDate(), true
	}

	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		return *t, true
	}

	if secs, ok := serializedSeconds(v); ok {
		if secs > maxEpochSeconds || secs < minEpochSeconds {
			return time.Time{}, false
		}
		return time.UnixMilli(secs * 1000), true
	}

	switch t := v.(type) {
	case string:
		return parseTimestampString(t)
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		if f, err := t.Float64(); err == nil {
			return fromEpochMillisFloat(f)
		}
		return time.Time{}, false
	case int:
		return time.UnixMilli(int64(t)), true
	case int32:
		return time.UnixMilli(int64(t)), true
	case int64:
		return time.UnixMilli(t), true
	case uint32:
		return time.UnixMilli(int64(t)), true
	case uint64:
		if t > math.MaxInt64 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)), true
	case float32:
		return fromEpochMillisFloat(float64(t))
	case float64:
		return fromEpochMillisFloat(t)
	}

	return time.Time{}, false
}

// serializedSeconds extracts epoch seconds from {seconds: N} shapes
func serializedSeconds(v any) (int64, bool) {
	switch t := v.(type) {
	case secondsHolder:
		return t.GetSeconds(), true
	case map[string]any:
		raw, ok := t["seconds"]
		if !ok || raw == nil {
			return 0, false
		}
		return secondsValue(raw)
	}
	return 0, false
}

func secondsValue(raw any) (int64, bool) {
	switch s := raw.(type) {
	case int:
		return int64(s), true
	case int64:
		return s, true
	case int32:
		return int64(s), true
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) || s > maxEpochSeconds || s < minEpochSeconds {
			return 0, false
		}
		return int64(s), true
	case json.Number:
		n, err := s.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func parseTimestampString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpochMillisFloat(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)), true
}

// isNil reports untyped nil and nil pointers/maps/interfaces
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// FlexibleTime is a JSON field accepting any timestamp shape NormalizeTimestamp understands
type FlexibleTime struct {
	Time  time.Time
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Unrecognized values leave Valid false.
func (f *FlexibleTime) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		f.Time, f.Valid = time.Time{}, false
		return nil
	}
	f.Time, f.Valid = NormalizeTimestamp(raw)
	return nil
}

// MarshalJSON renders RFC3339 or null
func (f FlexibleTime) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339Nano))
}

// Or returns the normalized time, or fallback when it is absent
func (f FlexibleTime) Or(fallback time.Time) time.Time {
	if f.Valid {
		return f.Time
	}
	return fallback
}
