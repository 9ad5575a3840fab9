// Package validation binds and validates request payloads.
//
// Payload types declare their rules with `validator` struct tags (or a
// hand-written Validate for rules tags cannot express). BindAndValidate
// turns failures into a 400 *errs.HTTPError whose details name the json
// field that failed.
package validation
