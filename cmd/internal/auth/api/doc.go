// Package authapi exposes registration, login and profile lookup over HTTP.
package authapi
