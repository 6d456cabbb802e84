// Package client contains the client-side transport and local store bootstrap.
//
// # Overview
//
//  1. HTTPClient talks to the upload endpoint: Health, Check, Upload
//     (multipart, one part named "file") and Reports. It implements
//     submit.Uploader.
//  2. InitDatabase and RunMigrations open the local SQLite store and apply
//     the embedded goose migrations; NewRepositories wires the repositories.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable, 401 maps to ErrUnauthorized and
// any other non-2xx status wraps ErrRejected together with a *netx.StatusError.
package client
