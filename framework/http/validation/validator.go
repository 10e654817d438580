package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var alphaDash = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors per field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error implements error with the first message of every field, sorted by field.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e.First(f))
	}
	return strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"retention_days": "required|integer|between:1,3650"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// Validated returns the fields that have rules and are present in the input.
func (v *Validator) Validated() map[string]string {
	out := make(map[string]string, len(v.rules))
	for field := range v.rules {
		if value, ok := v.data[field]; ok {
			out[field] = value
		}
	}
	return out
}

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	if v.ran {
		return
	}
	v.ran = true

	fields := make([]string, 0, len(v.rules))
	for field := range v.rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rules := strings.Split(v.rules[field], "|")
		numeric := hasRule(rules, "numeric") || hasRule(rules, "integer")
		value, present := v.data[field]

		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			name, param, _ := strings.Cut(rule, ":")

			switch {
			case name == "sometimes" && !present:
			case name == "nullable" && strings.TrimSpace(value) == "":
			default:
				if v.applyRule(field, value, name, param, numeric) {
					continue
				}
			}
			break // stop on first failure or skip
		}
	}
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if n, _, _ := strings.Cut(strings.TrimSpace(r), ":"); n == name {
			return true
		}
	}
	return false
}

// attribute turns a field key into the name used in messages.
func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// applyRule returns true if the rule passes. numeric switches min/max/between
// from character counts to numeric comparison.
func (v *Validator) applyRule(field, value, rule, param string, numeric bool) bool {
	attr := attribute(field)

	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", attr))
			return false
		}

	case "string", "sometimes", "nullable":

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a number.", attr))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", attr))
			return false
		}

	case "boolean":
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "on", "off":
		default:
			v.errors.add(field, fmt.Sprintf("The %s field must be true or false.", attr))
			return false
		}

	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a valid email address.", attr))
			return false
		}

	case "url":
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.errors.add(field, fmt.Sprintf("The %s must be a valid URL.", attr))
			return false
		}

	case "alpha_dash":
		if !alphaDash.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", attr))
			return false
		}

	case "min":
		n, _ := strconv.ParseFloat(param, 64)
		if measure(value, numeric) < n {
			v.errors.add(field, fmt.Sprintf("The %s must be at least %s%s.", attr, param, unit(numeric)))
			return false
		}

	case "max":
		n, _ := strconv.ParseFloat(param, 64)
		if measure(value, numeric) > n {
			v.errors.add(field, fmt.Sprintf("The %s may not be greater than %s%s.", attr, param, unit(numeric)))
			return false
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		minV, _ := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		maxV, _ := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if m := measure(value, numeric); m < minV || m > maxV {
			v.errors.add(field, fmt.Sprintf("The %s must be between %s and %s%s.",
				attr, strings.TrimSpace(lo), strings.TrimSpace(hi), unit(numeric)))
			return false
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				return true
			}
		}
		v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", attr))
		return false

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", attr))
			return false
		}
	}

	return true
}

func measure(value string, numeric bool) float64 {
	if numeric {
		f, _ := strconv.ParseFloat(value, 64)
		return f
	}
	return float64(utf8.RuneCountInString(value))
}

func unit(numeric bool) string {
	if numeric {
		return ""
	}
	return " characters"
}
