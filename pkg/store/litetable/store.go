// Package litetable stores entities in a LiteTable server over gRPC.
//
// LiteTable has a single keyspace, so every table is a row key prefix: the
// row "u1" of table "app:users" is stored as "app:users/u1". Row keys and
// qualifiers travel as protobuf strings and must be valid UTF-8. Table names
// cannot contain "/".
package litetable

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	name      = "litetable"
	separator = "/"
)

var _ session.Store = (*Store)(nil)

type Store struct {
	client  serviceClient
	conn    *grpc.ClientConn
	timeout time.Duration
}

type Config struct {
	// Address of the LiteTable gRPC server, host:port.
	Address string
	// TLS enables transport security. Without it the connection is plaintext.
	TLS *tls.Config
	// Timeout bounds every call. Zero leaves deadlines to the caller's context.
	Timeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address is required"))
	}
	if c.Timeout < 0 {
		errGrp = append(errGrp, errors.New("timeout cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// Dial creates a client connection to a LiteTable server. The connection is
// established lazily on the first call.
func Dial(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	creds := insecure.NewCredentials()
	if cfg.TLS != nil {
		creds = credentials.NewTLS(cfg.TLS)
	}
	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Address, err)
	}

	s := New(proto.NewLitetableServiceClient(conn))
	s.conn = conn
	s.timeout = cfg.Timeout
	return s, nil
}

// New wraps an existing LiteTable client.
func New(client serviceClient) *Store {
	return &Store{client: client}
}

// Start is a no-op; the connection is established by the first call.
func (s *Store) Start() error {
	return nil
}

// Stop closes a connection opened by Dial.
func (s *Store) Stop() error {
	if s.conn == nil {
		return nil
	}
	log.Info().Msg("Closing LiteTable connection")
	return s.conn.Close()
}

func (s *Store) Name() string {
	return name
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// EnsureFamilies creates the column families on the server.
func (s *Store) EnsureFamilies(ctx context.Context, families ...string) error {
	if len(families) == 0 {
		return newError(ErrNoFamilies, "nothing to create")
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	start := time.Now()
	if _, err := s.client.CreateFamily(ctx, &proto.CreateFamilyRequest{Family: families}); err != nil {
		return fmt.Errorf("create families %v: %w", families, err)
	}
	log.Debug().Msgf("CreateFamily %v latency: %v", families, time.Since(start))
	return nil
}

// Apply sends one write per row and family.
func (s *Store) Apply(ctx context.Context, table string, mutations []entity.Mutation) error {
	requests, err := writeRequests(table, mutations)
	if err != nil {
		return err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	start := time.Now()
	for _, req := range requests {
		if _, err := s.client.Write(ctx, req); err != nil {
			return fmt.Errorf("write %s %s: %w", req.GetRowKey(), req.GetFamily(), err)
		}
	}
	log.Debug().Msgf("Write %s: %d requests in %v", table, len(requests), time.Since(start))
	return nil
}

// ReadRow reads every family named by columns and keeps the newest value of
// each selected qualifier.
func (s *Store) ReadRow(ctx context.Context, table string, rowKey []byte, columns []session.Column) ([]entity.Cell, error) {
	key, err := storedKey(table, rowKey)
	if err != nil {
		return nil, err
	}
	families := session.Families(columns)
	if len(families) == 0 {
		return nil, newError(ErrNoFamilies, "read %s", key)
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	start := time.Now()
	var cells []entity.Cell
	for _, family := range families {
		data, err := s.client.Read(ctx, &proto.ReadRequest{
			Family:    family,
			RowKey:    key,
			QueryType: proto.QueryType_EXACT,
			Latest:    1,
		})
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s %s: %w", key, family, err)
		}
		if row, ok := data.GetRows()[key]; ok {
			cells = append(cells, rowCells(row, columns)...)
		}
	}
	log.Debug().Msgf("Read %s latency: %v", key, time.Since(start))

	sortCells(cells)
	return cells, nil
}

// DeleteRow deletes each family of the row.
func (s *Store) DeleteRow(ctx context.Context, table string, rowKey []byte, families []string) error {
	key, err := storedKey(table, rowKey)
	if err != nil {
		return err
	}
	if len(families) == 0 {
		return newError(ErrNoFamilies, "delete %s", key)
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	for _, family := range families {
		_, err := s.client.Delete(ctx, &proto.DeleteRequest{
			RowKey: key,
			Family: family,
		})
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("delete %s %s: %w", key, family, err)
		}
	}
	log.Debug().Msgf("Deleted %s families %v", key, families)
	return nil
}

func (s *Store) DeleteFamily(ctx context.Context, table string, rowKey []byte, family string) error {
	return s.DeleteRow(ctx, table, rowKey, []string{family})
}

// Scan reads the rows of table whose key has req.Prefix. A regex is applied to
// the key without its table prefix after the rows arrive.
func (s *Store) Scan(ctx context.Context, table string, req *session.ScanRequest) ([]session.Row, error) {
	if req == nil {
		req = &session.ScanRequest{}
	}
	families := session.Families(req.Columns)
	if len(families) == 0 {
		return nil, newError(ErrNoFamilies, "scan %s", table)
	}

	var re *regexp.Regexp
	if req.Regex != "" {
		var err error
		if re, err = regexp.Compile(req.Regex); err != nil {
			return nil, fmt.Errorf("%w: regex %q: %v", session.ErrInvalidScan, req.Regex, err)
		}
	}

	prefix, err := storedKey(table, req.Prefix)
	if err != nil {
		return nil, err
	}

	// the server only sees the table and prefix; the caller's regex runs here
	queryType, queryKey := proto.QueryType_PREFIX, prefix
	if re != nil {
		queryType, queryKey = proto.QueryType_REGEX, "^"+regexp.QuoteMeta(prefix)
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	start := time.Now()
	byKey := make(map[string][]entity.Cell)
	for _, family := range families {
		data, err := s.client.Read(ctx, &proto.ReadRequest{
			Family:    family,
			RowKey:    queryKey,
			QueryType: queryType,
			Latest:    1,
		})
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s %s: %w", prefix, family, err)
		}
		for stored, row := range data.GetRows() {
			key, ok := strings.CutPrefix(stored, table+separator)
			if !ok || (re != nil && !re.MatchString(key)) {
				continue
			}
			byKey[key] = append(byKey[key], rowCells(row, req.Columns)...)
		}
	}
	log.Debug().Msgf("Scan %s latency: %v", prefix, time.Since(start))

	rows := make([]session.Row, 0, len(byKey))
	for key, cells := range byKey {
		if len(cells) == 0 {
			continue
		}
		sortCells(cells)
		rows = append(rows, session.Row{Key: []byte(key), Cells: cells})
	}
	sort.Slice(rows, func(i, j int) bool {
		return string(rows[i].Key) < string(rows[j].Key)
	})
	return rows, nil
}

func storedKey(table string, rowKey []byte) (string, error) {
	if table == "" || strings.Contains(table, separator) {
		return "", newError(ErrInvalidTable, "%q", table)
	}
	if !utf8.Valid(rowKey) {
		return "", newError(ErrInvalidRowKey, "%x is not valid UTF-8", rowKey)
	}
	return table + separator + string(rowKey), nil
}

func writeRequests(table string, mutations []entity.Mutation) ([]*proto.WriteRequest, error) {
	var out []*proto.WriteRequest
	for _, r := range entity.GroupByRow(mutations) {
		key, err := storedKey(table, r.RowKey)
		if err != nil {
			return nil, err
		}

		byFamily := make(map[string]*proto.WriteRequest)
		for _, m := range r.Mutations {
			if !utf8.ValidString(m.Qualifier) {
				return nil, newError(ErrInvalidQualifier, "%q in %s %s", m.Qualifier, key, m.Family)
			}
			req, ok := byFamily[m.Family]
			if !ok {
				req = &proto.WriteRequest{RowKey: key, Family: m.Family}
				byFamily[m.Family] = req
				out = append(out, req)
			}
			req.Qualifiers = append(req.Qualifiers, &proto.ColumnQualifier{Name: m.Qualifier, Value: m.Value})
		}
	}
	return out, nil
}

// rowCells keeps the newest value of each selected qualifier of row.
func rowCells(row *proto.Row, columns []session.Column) []entity.Cell {
	var out []entity.Cell
	for family, vq := range row.GetCols() {
		for qualifier, values := range vq.GetQualifiers() {
			if !session.Selected(columns, family, qualifier) {
				continue
			}
			newest := newestValue(values.GetValues())
			if newest == nil {
				continue
			}
			value := newest.GetValue()
			if value == nil {
				value = []byte{}
			}
			out = append(out, entity.Cell{Family: family, Qualifier: qualifier, Value: value})
		}
	}
	return out
}

func newestValue(values []*proto.TimestampedValue) *proto.TimestampedValue {
	var newest *proto.TimestampedValue
	for _, v := range values {
		if newest == nil || v.GetTimestampUnix() > newest.GetTimestampUnix() {
			newest = v
		}
	}
	return newest
}

func sortCells(cells []entity.Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Family != cells[j].Family {
			return cells[i].Family < cells[j].Family
		}
		return cells[i].Qualifier < cells[j].Qualifier
	})
}

// isNotFound reports whether the server answered that nothing matched.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	if st.Code() == codes.NotFound {
		return true
	}
	return st.Code() == codes.Internal && strings.Contains(strings.ToLower(st.Message()), "not found")
}
