// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface so validation can be shared
// and tested consistently. The concrete implementation wraps
// go-playground/validator v10 with English translations and the custom rules
// this service needs (password shape, OTP codes, Iranian phone numbers).
package validator
