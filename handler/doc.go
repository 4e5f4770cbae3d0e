// Package handler implements plugin objects written as guest scripts.
//
// A handler script ends with a def that returns a handler:
//
//	def Echo():
//	    return handler(
//	        name = "echo",
//	        input_schema = {"type": "object", "required": ["message"]},
//	        handle = lambda input, context: input["message"],
//	    )
//
// Load runs the script with the view entry point and decodes the returned
// struct (module Elixir.Termite.Handler) into a Descriptor. Invoke checks
// the input against input_schema and runs the handle entry point with the
// input and the caller's context.
package handler
