package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/schema"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const userSchema = `
entities:
  - type: example.com/app.User
    table: users
    namespace: app
    rowKey: ID
    fields:
      - name: Name
        family: main
        column: name
      - name: Created
        family: main
        column: created
        updatable: false
      - name: Roles
        family: roles
        column: "r:"
        mapper: role
`

const overlapSchema = `
entities:
  - type: example.com/app.User
    table: users
    rowKey: ID
    fields:
      - name: Name
        family: main
        column: n
      - name: Nick
        family: main
        column: nick
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	// keep a developer's own ~/.litetable/ltmap.conf out of the way
	t.Setenv("HOME", t.TempDir())

	schemaFile := writeFile(t, "schema.yaml", userSchema)
	overlapFile := writeFile(t, "overlap.yaml", overlapSchema)
	configFile := writeFile(t, "ltmap.conf", "schema_file = "+schemaFile+"\ndebug = true\n")

	tests := map[string]struct {
		args   []string
		code   int
		stdout []string
		stderr []string
	}{
		"no command": {
			args:   nil,
			code:   2,
			stderr: []string{"usage: ltmap"},
		},
		"unknown command": {
			args:   []string{"migrate"},
			code:   2,
			stderr: []string{`unknown command "migrate"`},
		},
		"help": {
			args:   []string{"help"},
			code:   0,
			stdout: []string{"commands:"},
		},
		"bad flag": {
			args: []string{"check", "-type", "x"},
			code: 2,
		},
		"no schema": {
			args:   []string{"check"},
			code:   1,
			stderr: []string{"no schema file"},
		},
		"check": {
			args:   []string{"check", "-schema", schemaFile},
			code:   0,
			stdout: []string{"ok: 1 entities"},
		},
		"check from config": {
			args:   []string{"check", "-config", configFile},
			code:   0,
			stdout: []string{"ok: 1 entities"},
		},
		"check overlap": {
			args:   []string{"check", "-schema", overlapFile},
			code:   1,
			stderr: []string{"column prefix overlap"},
		},
		"missing schema file": {
			args:   []string{"check", "-schema", filepath.Join(t.TempDir(), "none.yaml")},
			code:   1,
			stderr: []string{"failed to open schema file"},
		},
		"describe": {
			args: []string{"describe", "-schema", schemaFile},
			code: 0,
			stdout: []string{
				"example.com/app.User",
				"table app:users",
				"main:name",
				"main:created",
				"insert\n",
				"roles:r:",
				"role",
				"insert,update",
			},
		},
		"inspect needs type and key": {
			args:   []string{"inspect", "-schema", schemaFile, "-address", "localhost:1"},
			code:   1,
			stderr: []string{"inspect needs -type and -key"},
		},
		"inspect needs address": {
			args:   []string{"inspect", "-schema", schemaFile, "-type", "example.com/app.User", "-key", "u1"},
			code:   1,
			stderr: []string{"no LiteTable address"},
		},
		"inspect bad key type": {
			args:   []string{"inspect", "-schema", schemaFile, "-type", "example.com/app.User", "-key", "u1", "-keytype", "uuid", "-address", "localhost:1"},
			code:   1,
			stderr: []string{`unknown key type "uuid"`},
		},
		"inspect unknown type": {
			args:   []string{"inspect", "-schema", schemaFile, "-type", "nope", "-key", "u1", "-address", "localhost:1"},
			code:   1,
			stderr: []string{"schema missing"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			var stdout, stderr bytes.Buffer
			code := run(tc.args, &stdout, &stderr)
			req.Equal(tc.code, code, "stderr: %s", stderr.String())
			for _, s := range tc.stdout {
				req.Contains(stdout.String(), s)
			}
			for _, s := range tc.stderr {
				req.Contains(stderr.String(), s)
			}
		})
	}
}

func TestInspectRow(t *testing.T) {
	d, err := schema.LoadDefinition(strings.NewReader(userSchema))
	require.NoError(t, err)
	e, _ := d.Entity("example.com/app.User")
	columns := []session.Column{{Family: "main"}, {Family: "roles"}}

	tests := map[string]struct {
		cells    []entity.Cell
		storeErr error
		stdout   []string
		err      string
	}{
		"resolved": {
			cells: []entity.Cell{
				{Family: "main", Qualifier: "name", Value: []byte("ada")},
				{Family: "roles", Qualifier: "r:admin", Value: []byte{}},
			},
			stdout: []string{"main:name", "Name", "roles:r:admin", "Roles"},
		},
		"unresolved": {
			cells:  []entity.Cell{{Family: "main", Qualifier: "email", Value: []byte("x")}},
			stdout: []string{"main:email", "(unresolved)"},
			err:    "1 cells resolve to no field",
		},
		"not found": {
			err: "entity not found",
		},
		"store error": {
			storeErr: errors.New("unavailable"),
			err:      "unavailable",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)

			store := session.NewMockStore(ctrl)
			store.EXPECT().ReadRow(gomock.Any(), "app:users", []byte("u1"), columns).Return(tc.cells, tc.storeErr)

			var out bytes.Buffer
			err := inspectRow(context.Background(), &out, store, e, []byte("u1"), columns)
			if tc.err != "" {
				req.ErrorContains(err, tc.err)
			} else {
				req.NoError(err)
			}
			for _, s := range tc.stdout {
				req.Contains(out.String(), s)
			}
		})
	}
}

func TestEncodeKey(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		keyType  string
		key      string
		expected []byte
		err      string
	}{
		"text": {
			keyType:  "text",
			key:      "u1",
			expected: []byte("u1"),
		},
		"default": {
			key:      "u1",
			expected: []byte("u1"),
		},
		"int64": {
			keyType:  "int64",
			key:      "42",
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 42},
		},
		"negative int32": {
			keyType:  "int32",
			key:      "-1",
			expected: []byte{0xFF, 0xFF, 0xFF, 0xFF},
		},
		"int16": {
			keyType:  "int16",
			key:      "258",
			expected: []byte{0x01, 0x02},
		},
		"hex": {
			keyType:  "hex",
			key:      "00ff",
			expected: []byte{0x00, 0xFF},
		},
		"int16 overflow": {
			keyType: "int16",
			key:     "70000",
			err:     "invalid int16 key",
		},
		"not a number": {
			keyType: "int64",
			key:     "u1",
			err:     "invalid int64 key",
		},
		"bad hex": {
			keyType: "hex",
			key:     "zz",
			err:     "invalid hex key",
		},
		"unknown": {
			keyType: "uuid",
			key:     "u1",
			err:     "unknown key type",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			got, err := encodeKey(tc.keyType, tc.key)
			if tc.err != "" {
				req.ErrorContains(err, tc.err)
				return
			}
			req.NoError(err)
			req.Equal(tc.expected, got)
		})
	}
}
