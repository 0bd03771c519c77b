package columnar_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bjaus/columnar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Surname string `column:"last_name"`
	UserID  int
}

func (t tagged) Initial() string { return t.Surname[:1] }

func (t tagged) Checked() (bool, error) { return false, errChecked }

func (t tagged) WithArg(int) string { return "" }

var errChecked = errors.New("check failed")

type selfAccessor struct{}

func (selfAccessor) Field(key string) (any, error) {
	if key == "id" {
		return 7, nil
	}
	return nil, fmt.Errorf("%w: %s", columnar.ErrUnknownField, key)
}

func TestLookup(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		record any
		key    string
		want   any
	}{
		"any map":         {record: map[string]any{"a": 1}, key: "a", want: 1},
		"typed map":       {record: map[string]string{"a": "x"}, key: "a", want: "x"},
		"tag":             {record: tagged{Surname: "Nowak"}, key: "last_name", want: "Nowak"},
		"field by name":   {record: tagged{Surname: "Nowak"}, key: "surname", want: "Nowak"},
		"snake case":      {record: tagged{UserID: 3}, key: "user_id", want: 3},
		"pointer":         {record: &tagged{UserID: 4}, key: "UserID", want: 4},
		"method":          {record: tagged{Surname: "Nowak"}, key: "initial", want: "N"},
		"accessor":        {record: selfAccessor{}, key: "id", want: 7},
		"snake case time": {record: user{CreatedAt: sashaCreated}, key: "created_at", want: sashaCreated},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := columnar.Lookup(tt.record, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		record any
		key    string
	}{
		"map missing key":   {record: map[string]any{"a": 1}, key: "b"},
		"typed map missing": {record: map[string]int{"a": 1}, key: "b"},
		"struct":            {record: tagged{}, key: "age"},
		"method with args":  {record: tagged{}, key: "with_arg"},
		"nil":               {record: nil, key: "a"},
		"nil pointer":       {record: (*tagged)(nil), key: "surname"},
		"scalar":            {record: 42, key: "a"},
		"accessor":          {record: selfAccessor{}, key: "name"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := columnar.Lookup(tt.record, tt.key)
			require.ErrorIs(t, err, columnar.ErrUnknownField)
		})
	}
}

func TestLookupMethodError(t *testing.T) {
	t.Parallel()
	v, err := columnar.Lookup(tagged{}, "checked")
	require.ErrorIs(t, err, errChecked)
	assert.Equal(t, false, v)
}
