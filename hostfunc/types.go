package hostfunc

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// KV store requests

type KVGetRequest struct {
	Key     string `mapstructure:"key"`
	Default any    `mapstructure:"default"`
}

type KVSetRequest struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

type KVDeleteRequest struct {
	Key string `mapstructure:"key"`
}

type KVKeysRequest struct {
	Prefix string `mapstructure:"prefix"`
}

// Package requests

type PkgRequest struct {
	Name string `mapstructure:"name"`
}

// Filesystem requests

type FSPathRequest struct {
	Path string `mapstructure:"path"`
}

type FSWriteRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

// HTTP requests

type HTTPRequest struct {
	Method  string            `mapstructure:"method"`
	URL     string            `mapstructure:"url"`
	Body    string            `mapstructure:"body"`
	Headers map[string]string `mapstructure:"headers"`
}

// decodeArgs fills req from the keyword arguments of a call.
func decodeArgs(args map[string]any, req any) error {
	if err := mapstructure.Decode(args, req); err != nil {
		return fmt.Errorf("bad arguments: %w", err)
	}
	return nil
}
