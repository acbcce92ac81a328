// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package pkgjson adds script entries to a package.json without disturbing
// any of the keys it does not own.
//
// The document is edited as a syntax tree so untouched values keep their
// exact bytes and the key order of the original file is retained.
package pkgjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/renameio/v2"
	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/tailscale/hujson"
)

// ScriptsKey is the top level key holding scripts
const ScriptsKey = "scripts"

// Patch adds or overwrites scripts in the package descriptor at path
func Patch(path string, scripts map[string]string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errdef.Wrap(errdef.CodeManifestParse, err, "reading %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errdef.Wrap(errdef.CodeManifestParse, err, "reading %s", path)
	}

	patched, err := PatchBytes(data, scripts)
	if err != nil {
		return errdef.Wrap(errdef.CodeManifestParse, err, "parsing %s", path)
	}

	err = renameio.WriteFile(path, patched, info.Mode().Perm())
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "writing %s", path)
	}

	return nil
}

// PatchBytes returns data with scripts merged into its scripts object,
// formatted with two space indentation and a trailing newline
func PatchBytes(data []byte, scripts map[string]string) ([]byte, error) {
	val, err := hujson.Parse(data)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeManifestParse, err, "invalid JSON")
	}
	if !val.IsStandard() {
		return nil, errdef.New(errdef.CodeManifestParse, "invalid JSON: comments and trailing commas are not allowed")
	}

	root, ok := val.Value.(*hujson.Object)
	if !ok {
		return nil, errdef.New(errdef.CodeManifestParse, "expected a JSON object at the top level")
	}

	target := member(root, ScriptsKey)
	if target == nil {
		root.Members = append(root.Members, hujson.ObjectMember{
			Name:  hujson.Value{Value: hujson.String(ScriptsKey)},
			Value: hujson.Value{Value: &hujson.Object{}},
		})
		target = &root.Members[len(root.Members)-1].Value
	}

	obj, ok := target.Value.(*hujson.Object)
	if !ok {
		return nil, errdef.New(errdef.CodeManifestParse, "%q is not a JSON object", ScriptsKey)
	}

	// sorted so new keys are appended in a stable order
	names := make([]string, 0, len(scripts))
	for k := range scripts {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		existing := member(obj, name)
		if existing != nil {
			existing.Value = hujson.String(scripts[name])
			continue
		}

		obj.Members = append(obj.Members, hujson.ObjectMember{
			Name:  hujson.Value{Value: hujson.String(name)},
			Value: hujson.Value{Value: hujson.String(scripts[name])},
		})
	}

	val.Standardize()
	val.Minimize()

	out := bytes.NewBuffer(nil)
	err = json.Indent(out, val.Pack(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("formatting: %w", err)
	}
	out.WriteByte('\n')

	return out.Bytes(), nil
}

// Scripts returns the scripts currently defined in data
func Scripts(data []byte) (map[string]string, error) {
	var doc struct {
		Scripts map[string]string `json:"scripts"`
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeManifestParse, err, "invalid JSON")
	}

	err = json.Unmarshal(std, &doc)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeManifestParse, err, "invalid scripts")
	}

	if doc.Scripts == nil {
		doc.Scripts = map[string]string{}
	}

	return doc.Scripts, nil
}

func member(obj *hujson.Object, name string) *hujson.Value {
	for i := range obj.Members {
		lit, ok := obj.Members[i].Name.Value.(hujson.Literal)
		if ok && lit.String() == name {
			return &obj.Members[i].Value
		}
	}

	return nil
}
