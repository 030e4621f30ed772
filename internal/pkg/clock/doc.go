// Package clock abstracts the system clock behind a tiny interface so code
// that reasons about expiry (challenges, tokens) can be tested with a frozen
// or stepped time source.
package clock
