package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Normalize coerces a loosely-typed payload (decoded JSON or collected
// multipart form values) into an Input. Booleans may arrive as "true"/"false",
// integers as numeric strings and technologies as a comma-separated string.
// Keys that are not client-writable (id, slug, image fields, timestamps) are
// ignored.
func Normalize(raw map[string]any) (Input, error) {
	var in Input
	var err error

	if in.Title, err = stringField(raw, "title", true); err != nil {
		return Input{}, err
	}
	if in.Description, err = stringField(raw, "description", false); err != nil {
		return Input{}, err
	}
	if in.ProjectType, err = stringField(raw, "projectType", true); err != nil {
		return Input{}, err
	}
	if in.ProjectType != nil {
		if *in.ProjectType == "" {
			in.ProjectType = nil
		} else {
			t := strings.ToLower(*in.ProjectType)
			in.ProjectType = &t
		}
	}
	if in.ProjectURL, err = stringField(raw, "projectUrl", true); err != nil {
		return Input{}, err
	}
	if in.GithubURL, err = stringField(raw, "githubUrl", true); err != nil {
		return Input{}, err
	}
	if in.PrivacyPolicy, err = stringField(raw, "privacyPolicy", false); err != nil {
		return Input{}, err
	}

	if v, ok := raw["featured"]; ok && v != nil {
		b, err := toBool(v)
		if err != nil {
			return Input{}, err
		}
		in.Featured = b
	}

	if v, ok := raw["order"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return Input{}, err
		}
		in.Order = n
	}

	if v, ok := raw["technologies"]; ok {
		techs, err := toStringList(v)
		if err != nil {
			return Input{}, err
		}
		in.Technologies = techs
		in.TechnologiesSet = true
	}

	return in, nil
}

func stringField(raw map[string]any, key string, trim bool) (*string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
		s = t[0]
	default:
		return nil, fmt.Errorf("%w: %s must be a string", ErrValidation, key)
	}
	if !cleanText(s) {
		return nil, fmt.Errorf("%w: %s contains invalid characters", ErrValidation, key)
	}
	if trim {
		s = strings.TrimSpace(s)
	}
	return &s, nil
}

// cleanText reports whether s is valid UTF-8 without NUL bytes, which no
// backing store accepts in text columns.
func cleanText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func toBool(v any) (*bool, error) {
	switch t := v.(type) {
	case bool:
		return &t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: featured must be true or false", ErrValidation)
		}
		return &b, nil
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
		return toBool(t[0])
	default:
		return nil, fmt.Errorf("%w: featured must be true or false", ErrValidation)
	}
}

func toInt(v any) (*int, error) {
	invalid := fmt.Errorf("%w: order must be an integer", ErrValidation)
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return nil, fmt.Errorf("%w: order is out of range", ErrValidation)
		}
		n = int(t)
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, invalid
		}
		if t < math.MinInt32 || t > math.MaxInt32 {
			return nil, fmt.Errorf("%w: order is out of range", ErrValidation)
		}
		n = int(t)
	case json.Number:
		i, err := strconv.Atoi(t.String())
		if err != nil {
			return nil, invalid
		}
		n = i
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, invalid
		}
		n = i
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
		return toInt(t[0])
	default:
		return nil, invalid
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: order is out of range", ErrValidation)
	}
	return &n, nil
}

// toStringList accepts a comma-separated string, a list of strings, or null.
// Items are trimmed and empty items dropped; order is preserved.
func toStringList(v any) ([]string, error) {
	out := []string{}
	bad := false
	add := func(s string) {
		if !cleanText(s) {
			bad = true
			return
		}
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}

	switch t := v.(type) {
	case nil:
	case string:
		add(t)
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: technologies must be a list of strings", ErrValidation)
			}
			add(s)
		}
	default:
		return nil, fmt.Errorf("%w: technologies must be a list or a comma-separated string", ErrValidation)
	}
	if bad {
		return nil, fmt.Errorf("%w: technologies contain invalid characters", ErrValidation)
	}
	return out, nil
}
