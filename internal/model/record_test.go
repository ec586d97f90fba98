package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetPreservesOrder(t *testing.T) {
	r := NewRecord()
	r.Set("Company Name", "RetailCo")
	r.Set("Location", "Chicago")
	r.Set("Debt", float64(100))

	assert.Equal(t, []string{"Company Name", "Location", "Debt"}, r.Fields())

	// Overwriting keeps the original position.
	r.Set("Location", "Boston")
	assert.Equal(t, []string{"Company Name", "Location", "Debt"}, r.Fields())

	v, ok := r.Get("Location")
	require.True(t, ok)
	assert.Equal(t, "Boston", v)
}

func TestRecord_GetMissing(t *testing.T) {
	r := NewRecord()
	r.Set("CEO", nil)

	v, ok := r.Get("CEO")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = r.Get("CFO")
	assert.False(t, ok)
	assert.False(t, r.Has("CFO"))
	assert.True(t, r.Has("CEO"))
}

func TestRecord_MarshalOrdered(t *testing.T) {
	r := NewRecord()
	r.Set("Company Name", "RetailCo")
	r.Set("Debt (in millions)", float64(110))
	r.Set("CEO", nil)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Company Name":"RetailCo","Debt (in millions)":110,"CEO":null}`, string(data))
}

func TestRecord_UnmarshalPreservesOrder(t *testing.T) {
	raw := `{"Company Name":"HealthInc","Revenue (in millions)":4560,"CEO":"Jane Smith","Notes":null}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, []string{"Company Name", "Revenue (in millions)", "CEO", "Notes"}, r.Fields())

	v, _ := r.Get("Revenue (in millions)")
	assert.Equal(t, float64(4560), v)
	v, _ = r.Get("Notes")
	assert.Nil(t, v)
}

func TestRecord_UnmarshalRejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"text"`), &r))
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord()
	r.Set("a", "1")
	r.Set("b", float64(2))

	c := r.Clone()
	c.Set("a", "changed")
	c.Set("c", nil)

	v, _ := r.Get("a")
	assert.Equal(t, "1", v)
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, c.Fields())
}
