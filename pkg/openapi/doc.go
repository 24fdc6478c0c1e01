// Package openapi derives override documents from OpenAPI operations. The
// request body schema of an operation supplies the ordered field list and the
// optional, pattern and length fragments for each top-level property.
//
// Loading is split out behind the Loader contract; the file, fs.FS and HTTP
// strategies live under internal/openapi/loader and are wired together by the
// root formfilter package.
package openapi
