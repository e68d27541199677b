// Package config builds the bloombox-server process configuration.
//
// Values are applied in order, later sources winning:
//
//  1. bloombox.DefaultConfig and the server defaults below
//  2. an optional .env file
//  3. process environment variables
//  4. command-line flags
package config
