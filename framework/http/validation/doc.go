// Package validation validates flat string maps against pipe-separated rule
// strings.
//
//	v := validation.Make(fields, validation.Rules{
//	    "enabled":        "sometimes|boolean",
//	    "retention_days": "required|integer|between:1,3650",
//	})
//	if v.Fails() {
//	    res.ValidationError(v.Errors())
//	}
//
// Fields are checked in sorted order and each field stops at its first failing
// rule. Field names are shown with underscores replaced by spaces, so
// "retention_days" reads as "The retention days field is required.".
//
// # Rules
//
//   - required, string, email, url, alpha_dash, regex:pattern
//   - numeric, integer, boolean, in:a,b,c
//   - min:n, max:n, between:a,b compare character counts, or values when the
//     field also carries numeric or integer
//   - nullable stops processing for an empty value, sometimes for an absent one
//
// Errors serialise as {"errors": {"field": ["message"]}}.
package validation
