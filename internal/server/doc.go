// Package server wires the bloombox Engine to HTTP routes under /api/v1.
package server
