// Package extension decodes the contents of agent Extension messages.
//
// The protocol layer keeps extension contents opaque. Payload types here
// give well-known extensions a structured form, looked up by extension
// type name through a Registry.
package extension
