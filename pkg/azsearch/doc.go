// Package azsearch commits batches of documents to a Microsoft Azure
// Search index over its REST batch API.
//
// The package translates add/delete operations into the service's
// bulk-index JSON payload, validates field names and document keys
// client-side before anything is sent, and manages a lazily built, pooled
// HTTP client across batches. It deliberately does not retry: a failed
// commit is reported once and retry policy stays with the caller.
//
// # Basic Usage
//
//	import (
//	    "context"
//	    "github.com/dmitrymomot/azcommit/pkg/azsearch"
//	)
//
//	committer := azsearch.New(azsearch.Config{
//	    Endpoint:  "https://example.search.windows.net",
//	    APIKey:    "1234567890ABCDEF1234567890ABCDEF",
//	    IndexName: "sample-index",
//	})
//	defer committer.Close()
//
//	var meta azsearch.Metadata
//	meta.Add("title", "A Document")
//	meta.Add("tags", "go", "search")
//
//	committed, err := committer.Commit(ctx, azsearch.Batch{
//	    azsearch.AddOperation{Ref: "https://example.com/doc1", Fields: meta},
//	    azsearch.DeleteOperation{Ref: "https://example.com/doc2"},
//	})
//
// Environment-based configuration:
//
//	cfg, err := azsearch.Load()
//	committer := azsearch.New(cfg)
//
// # Document Keys
//
// By default document keys are URL-safe base64 encoded, which guarantees
// they satisfy the service's key character rules no matter what the source
// reference looks like (a URL, for instance). Set
// Config.DisableKeyEncoding only when references are known safe; raw keys
// are then checked with ValidateDocumentKey and invalid documents are
// dropped or rejected depending on Config.IgnoreValidationErrors.
//
// # Field Serialization
//
// A field with several values always serializes as a JSON array. A field
// with one value serializes as a scalar unless the configured array-field
// rule (Config.ArrayFields) names it, which keeps fields of an Azure
// Collection type in array form even for single values.
//
// # Error Handling
//
// Use errors.Is against the package sentinels to classify failures:
//
//	committed, err := committer.Commit(ctx, batch)
//	switch {
//	case errors.Is(err, azsearch.ErrConfig):
//	    // incomplete settings, nothing was sent
//	case errors.Is(err, azsearch.ErrValidation):
//	    // a field or key violates naming rules
//	case errors.Is(err, azsearch.ErrResponse):
//	    // the service answered non-2xx; server-side effect is unknown
//	case errors.Is(err, azsearch.ErrTransport):
//	    // network failure
//	}
package azsearch
