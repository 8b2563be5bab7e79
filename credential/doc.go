// Package credential materializes a base64 encoded credential blob as a
// private file, so a subprocess can be pointed at it through an environment
// variable such as GOOGLE_APPLICATION_CREDENTIALS.
package credential
