// Command ltmap validates and describes entity schema definitions, and shows
// how the cells of a stored row resolve to entity fields.
//
//	ltmap check    -schema schema.yaml
//	ltmap describe -schema schema.yaml
//	ltmap inspect  -schema schema.yaml -type example.com/app.User -key u1 -address localhost:9090
//	ltmap inspect  -schema schema.yaml -type example.com/app.Counter -key 42 -keytype int64
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/litetable/litetable-orm/internal/config"
	"github.com/litetable/litetable-orm/pkg/codec"
	"github.com/litetable/litetable-orm/pkg/schema"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/litetable/litetable-orm/pkg/store/litetable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: ltmap <command> [flags]

commands:
  check     validate a schema definition
  describe  print the entities of a schema definition
  inspect   resolve the cells of a stored row to entity fields
            (-keytype text|int16|int32|int64|hex; default text)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	schemaFile string
	configFile string
	debug      bool

	typeID  string
	rowKey  string
	keyType string
	address string
	timeout time.Duration
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	command := args[0]

	fs := flag.NewFlagSet("ltmap "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.schemaFile, "schema", "", "schema definition file (YAML)")
	fs.StringVar(&opts.configFile, "config", "", "ltmap.conf file; defaults to ~/.litetable/ltmap.conf when present")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	if command == "inspect" {
		fs.StringVar(&opts.typeID, "type", "", "entity type identifier")
		fs.StringVar(&opts.rowKey, "key", "", "row key")
		fs.StringVar(&opts.keyType, "keytype", "text", "row key encoding: text, int16, int32, int64 or hex")
		fs.StringVar(&opts.address, "address", "", "LiteTable gRPC address")
	}

	switch command {
	case "check", "describe", "inspect":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	if err := resolve(&opts); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	setupLogging(stderr, opts.debug)

	def, err := schema.LoadDefinitionFile(opts.schemaFile)
	if err != nil {
		log.Error().Msg(err.Error())
		return 1
	}

	switch command {
	case "check":
		err = check(stdout, def)
	case "describe":
		err = describe(stdout, def)
	case "inspect":
		err = inspect(stdout, def, &opts)
	}
	if err != nil {
		log.Error().Msg(err.Error())
		return 1
	}
	return 0
}

// resolve fills unset options from the configuration file.
func resolve(opts *options) error {
	path := opts.configFile
	if path == "" {
		def, err := config.DefaultPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(def); err == nil {
			path = def
		}
	}

	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if opts.schemaFile == "" {
			opts.schemaFile = cfg.SchemaFile
		}
		if opts.address == "" {
			opts.address = cfg.LiteTableAddress
		}
		opts.debug = opts.debug || cfg.Debug
		opts.timeout = cfg.Timeout
	}

	if opts.schemaFile == "" {
		return errors.New("no schema file: pass -schema or set schema_file in the config")
	}
	return nil
}

func setupLogging(w io.Writer, debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func check(w io.Writer, def *schema.Definition) error {
	if err := def.Check(); err != nil {
		return err
	}
	fmt.Fprintf(w, "ok: %d entities\n", len(def.Entities))
	return nil
}

func describe(w io.Writer, def *schema.Definition) error {
	if err := def.Check(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, e := range def.Entities {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\ttable %s\trow key %s\n", e.Type, e.QualifiedTable(), e.RowKey)
		fmt.Fprintln(tw, "FIELD\tCOLUMN\tMAPPER\tWRITES")
		for _, f := range e.Fields {
			column := f.Column
			if column == "" {
				column = f.Name
			}
			mapper := f.Mapper
			if mapper == "" {
				mapper = "-"
			}
			fmt.Fprintf(tw, "%s\t%s:%s\t%s\t%s\n", f.Name, f.Family, column, mapper, writes(f))
		}
	}
	return tw.Flush()
}

func writes(f schema.FieldDefinition) string {
	var modes []string
	if f.Insertable == nil || *f.Insertable {
		modes = append(modes, "insert")
	}
	if f.Updatable == nil || *f.Updatable {
		modes = append(modes, "update")
	}
	if len(modes) == 0 {
		return "-"
	}
	return strings.Join(modes, ",")
}

func inspect(w io.Writer, def *schema.Definition, opts *options) error {
	if opts.typeID == "" || opts.rowKey == "" {
		return errors.New("inspect needs -type and -key")
	}
	if opts.address == "" {
		return errors.New("no LiteTable address: pass -address or set litetable_address in the config")
	}
	e, ok := def.Entity(opts.typeID)
	if !ok {
		return fmt.Errorf("%w: %s", schema.ErrSchemaMissing, opts.typeID)
	}
	rowKey, err := encodeKey(opts.keyType, opts.rowKey)
	if err != nil {
		return err
	}

	store, err := litetable.Dial(&litetable.Config{Address: opts.address, Timeout: opts.timeout})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to close LiteTable connection")
		}
	}()

	families := e.Families()
	columns := make([]session.Column, len(families))
	for i, f := range families {
		columns[i] = session.Column{Family: f}
	}

	return inspectRow(context.Background(), w, store, e, rowKey, columns)
}

// encodeKey turns the -key text into stored row key bytes. Integer keys use
// the codec layout of their width.
func encodeKey(keyType, key string) ([]byte, error) {
	switch keyType {
	case "", "text":
		return []byte(key), nil
	case "hex":
		b, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("invalid hex key %q: %w", key, err)
		}
		return b, nil
	}

	bits := map[string]int{"int16": 16, "int32": 32, "int64": 64}[keyType]
	if bits == 0 {
		return nil, fmt.Errorf("unknown key type %q", keyType)
	}
	n, err := strconv.ParseInt(key, 10, bits)
	if err != nil {
		return nil, fmt.Errorf("invalid %s key %q: %w", keyType, key, err)
	}
	switch bits {
	case 16:
		return codec.Encode(int16(n))
	case 32:
		return codec.Encode(int32(n))
	}
	return codec.Encode(n)
}

func inspectRow(ctx context.Context, w io.Writer, store session.Store, e *schema.EntityDefinition, rowKey []byte, columns []session.Column) error {
	cells, err := store.ReadRow(ctx, e.QualifiedTable(), rowKey, columns)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		return fmt.Errorf("%w: %s %q", session.ErrNotFound, e.QualifiedTable(), rowKey)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tFIELD\tBYTES")
	var unresolved int
	for _, c := range cells {
		field, ok := e.FieldFor(c.Family, c.Qualifier)
		if !ok {
			field = "(unresolved)"
			unresolved++
		}
		fmt.Fprintf(tw, "%s:%s\t%s\t%d\n", c.Family, c.Qualifier, field, len(c.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if unresolved > 0 {
		return fmt.Errorf("%d cells resolve to no field of %s", unresolved, e.Type)
	}
	return nil
}
