// Package muxschema attaches request and response models to gorilla/mux
// routes, validates traffic against them, and generates an OpenAPI 3.1
// document from the declarations.
//
// Declare models per route with Route and friends, wrap the router with
// Middleware to validate incoming requests, write responses through
// Respond to validate outgoing ones, and register documentation endpoints
// with Handle. Models are plain Go values classified by package model:
// structs, validating records, custom-codec wire structs and typed maps
// all work.
package muxschema
