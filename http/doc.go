// Package http provides the REST API for the imagevault object store.
//
// # Routes
//
//   - POST   /objects            multipart file + owner, creates an object (201)
//   - GET    /objects/{name}     ?owner=..., streams the blob
//   - PUT    /objects/{name}     multipart file + owner, replaces the blob
//   - DELETE /objects/{name}     ?owner=..., removes blob and sidecar
//   - POST   /objects/query      form filterType (+ dates/owner), catalog query
//   - GET    /objects/transfer   ?oldOwner=...&newOwner=..., bulk ownership rewrite
//
// Every operation on a named object carries a claimed owner; a mismatch
// against the stored owner is 403 and never exposes content.
//
// # Errors
//
// Errors are JSON bodies with a stable machine-readable code:
//
//	{"error": "forbidden", "message": "You are not the owner of this object"}
//
// HandleError maps the imagevault sentinel errors to status codes;
// anything unrecognized becomes a 500 without leaking storage paths.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{MaxUploadSize: 32 << 20}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// The service parameter must implement the Service interface with
// Create, Retrieve, Replace, Delete, Query, and Transfer methods.
package http
