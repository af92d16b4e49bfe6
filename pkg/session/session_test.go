package session

import (
	"context"
	"errors"
	"testing"

	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type user struct {
	ID    string   `ltmap:"rowkey,table=users,namespace=app,family=main"`
	Name  string   `ltmap:"column=name"`
	Age   int32    `ltmap:"column=age,noupdate"`
	Roles []string `ltmap:"family=roles,column=r:"`
}

type counter struct {
	ID int64 `ltmap:"rowkey,table=counters,family=c"`
	N  int32 `ltmap:"column=n"`
}

type unregistered struct {
	ID string
}

func testRegistry(t *testing.T) *schema.Registry {
	reg, err := schema.NewBuilder().
		RegisterStruct(user{}, nil).
		RegisterStruct(counter{}, nil).
		Build()
	require.NoError(t, err)
	return reg
}

func testSession(t *testing.T) (*Session, *MockStore) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	s, err := New(&Config{Registry: testRegistry(t), Store: store})
	require.NoError(t, err)
	return s, store
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg      *Config
		contains []string
	}{
		"empty config": {
			cfg:      &Config{},
			contains: []string{"schema registry is required", "store is required"},
		},
		"missing store": {
			cfg:      &Config{Registry: &schema.Registry{}},
			contains: []string{"store is required"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			s, err := New(tc.cfg)
			req.Nil(s)
			for _, c := range tc.contains {
				req.ErrorContains(err, c)
			}
		})
	}
}

func TestSession_Save(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)
	reg := s.Registry()

	u := &user{ID: "u1", Name: "ada", Age: 36, Roles: []string{"admin"}}
	inserted, err := entity.Encode(reg, u, entity.Insert)
	req.NoError(err)
	updated, err := entity.Encode(reg, u, entity.Update)
	req.NoError(err)
	req.Len(updated, len(inserted)-1)

	gomock.InOrder(
		store.EXPECT().Apply(gomock.Any(), "app:users", inserted).Return(nil),
		store.EXPECT().Apply(gomock.Any(), "app:users", updated).Return(errors.New("unavailable")),
	)

	req.NoError(s.Save(context.Background(), u))
	req.ErrorContains(s.Update(context.Background(), u), "unavailable")
}

func TestSession_SaveErrors(t *testing.T) {
	req := require.New(t)
	s, _ := testSession(t)

	req.True(errors.Is(s.Save(context.Background(), &user{}), entity.ErrRowKeyMissing))
	req.True(errors.Is(s.Save(context.Background(), unregistered{ID: "x"}), schema.ErrSchemaMissing))
	req.True(errors.Is(s.SaveAll(context.Background(), &user{ID: "a"}, nil), entity.ErrInvalidEntity))
}

func TestSession_SaveAll(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	a := &user{ID: "a", Name: "a"}
	b := &user{ID: "b", Name: "b"}
	c := &counter{ID: 1, N: 2}

	users, err := entity.EncodeAll(s.Registry(), entity.Insert, a, b)
	req.NoError(err)
	counters, err := entity.Encode(s.Registry(), c, entity.Insert)
	req.NoError(err)

	gomock.InOrder(
		store.EXPECT().Apply(gomock.Any(), "app:users", users).Return(nil),
		store.EXPECT().Apply(gomock.Any(), "counters", counters).Return(nil),
	)

	req.NoError(s.SaveAll(context.Background(), a, c, b))
}

func TestLoad(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	store.EXPECT().
		ReadRow(gomock.Any(), "app:users", []byte("u1"), []Column{{Family: "main"}, {Family: "roles"}}).
		Return([]entity.Cell{
			{Family: "roles", Qualifier: "r:admin", Value: []byte{}},
			{Family: "main", Qualifier: "name", Value: []byte("ada")},
			{Family: "main", Qualifier: "age", Value: []byte{0, 0, 0, 36}},
		}, nil)

	u, err := Load[user](context.Background(), s, "u1")
	req.NoError(err)
	req.Equal(&user{ID: "u1", Name: "ada", Age: 36, Roles: []string{"admin"}}, u)
}

func TestLoad_Columns(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	cols, err := FieldColumns[user](s, "Name")
	req.NoError(err)
	req.Equal([]Column{{Family: "main", Qualifier: "name"}}, cols)

	_, err = FieldColumns[user](s, "Nope")
	req.True(errors.Is(err, ErrUnknownField))

	store.EXPECT().
		ReadRow(gomock.Any(), "app:users", []byte("u1"), cols).
		Return([]entity.Cell{{Family: "main", Qualifier: "name", Value: []byte("ada")}}, nil)

	u, err := Load[user](context.Background(), s, "u1", cols...)
	req.NoError(err)
	req.Equal(&user{ID: "u1", Name: "ada"}, u)
}

func TestLoad_IntegerKey(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	store.EXPECT().
		ReadRow(gomock.Any(), "counters", []byte{0, 0, 0, 0, 0, 0, 0, 7}, gomock.Any()).
		Return([]entity.Cell{{Family: "c", Qualifier: "n", Value: []byte{0, 0, 0, 3}}}, nil)

	// untyped constants arrive as int and are widened to the int64 key
	c, err := Load[counter](context.Background(), s, 7)
	req.NoError(err)
	req.Equal(&counter{ID: 7, N: 3}, c)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rowKey   any
		cells    []entity.Cell
		storeErr error
		read     bool
		expected error
	}{
		"not found": {
			rowKey:   "u1",
			read:     true,
			expected: ErrNotFound,
		},
		"store failure": {
			rowKey:   "u1",
			storeErr: context.DeadlineExceeded,
			read:     true,
			expected: context.DeadlineExceeded,
		},
		"unresolved cell": {
			rowKey:   "u1",
			cells:    []entity.Cell{{Family: "main", Qualifier: "email"}},
			read:     true,
			expected: entity.ErrFieldUnresolved,
		},
		"wrong key type": {
			rowKey:   42,
			expected: ErrInvalidRowKey,
		},
		"zero key": {
			rowKey:   "",
			expected: entity.ErrRowKeyMissing,
		},
		"nil key": {
			rowKey:   nil,
			expected: entity.ErrRowKeyMissing,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)
			s, store := testSession(t)

			if tc.read {
				store.EXPECT().ReadRow(gomock.Any(), "app:users", gomock.Any(), gomock.Any()).
					Return(tc.cells, tc.storeErr)
			}

			u, err := Load[user](context.Background(), s, tc.rowKey)
			req.Nil(u)
			req.True(errors.Is(err, tc.expected), "got %v", err)
		})
	}

	t.Run("unregistered type", func(t *testing.T) {
		t.Parallel()
		s, _ := testSession(t)

		_, err := Load[unregistered](context.Background(), s, "x")
		require.True(t, errors.Is(err, schema.ErrSchemaMissing))
	})
}

func TestDelete(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	store.EXPECT().DeleteRow(gomock.Any(), "app:users", []byte("u1"), []string{"main", "roles"}).Return(nil)
	store.EXPECT().DeleteFamily(gomock.Any(), "app:users", []byte("u1"), "roles").Return(nil)

	req.NoError(Delete[user](context.Background(), s, "u1"))
	req.NoError(DeleteFamily[user](context.Background(), s, "u1", "roles"))

	err := DeleteFamily[user](context.Background(), s, "u1", "other")
	req.True(errors.Is(err, ErrUnknownFamily))

	err = Delete[user](context.Background(), s, "")
	req.True(errors.Is(err, entity.ErrRowKeyMissing))
}

func TestScan(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	store.EXPECT().
		Scan(gomock.Any(), "app:users", &ScanRequest{
			Prefix: []byte("u"),
			Columns: []Column{
				{Family: "main", Qualifier: "name"},
				{Family: "roles"},
			},
		}).
		Return([]Row{
			{Key: []byte("u2"), Cells: []entity.Cell{{Family: "main", Qualifier: "name", Value: []byte("bob")}}},
			{Key: []byte("u3")},
			{Key: []byte("u1"), Cells: []entity.Cell{
				{Family: "main", Qualifier: "name", Value: []byte("ada")},
				{Family: "roles", Qualifier: "r:ops", Value: []byte{}},
			}},
		}, nil)

	got, err := Scan(context.Background(), s, &ScanParams[user]{
		Prefix:       []byte("u"),
		Columns:      []Column{{Family: "main", Qualifier: "name"}},
		ExtraColumns: []Column{{Family: "roles"}, {Family: "main", Qualifier: "name"}},
		Less:         func(a, b *user) bool { return a.ID < b.ID },
	})
	req.NoError(err)
	req.Equal([]*user{
		{ID: "u1", Name: "ada", Roles: []string{"ops"}},
		{ID: "u2", Name: "bob"},
	}, got)
}

func TestScan_Defaults(t *testing.T) {
	req := require.New(t)
	s, store := testSession(t)

	store.EXPECT().
		Scan(gomock.Any(), "counters", &ScanRequest{Columns: []Column{{Family: "c"}}}).
		Return(nil, nil)

	got, err := Scan[counter](context.Background(), s, nil)
	req.NoError(err)
	req.Empty(got)
}

func TestScan_InvalidRegex(t *testing.T) {
	req := require.New(t)
	s, _ := testSession(t)

	_, err := Scan(context.Background(), s, &ScanParams[user]{Regex: "u(["})
	req.True(errors.Is(err, ErrInvalidScan))
}

func TestColumns(t *testing.T) {
	req := require.New(t)

	cols := []Column{{Family: "main", Qualifier: "name"}, {Family: "roles"}, {Family: "main"}}
	req.True(Selected(nil, "any", "thing"))
	req.True(Selected(cols, "main", "name"))
	req.True(Selected(cols, "roles", "r:admin"))
	req.False(Selected(cols[:1], "main", "age"))
	req.False(Selected(cols, "other", "name"))
	req.Equal([]string{"main", "roles"}, Families(cols))
}
