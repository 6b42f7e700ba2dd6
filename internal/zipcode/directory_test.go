package zipcode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGeoNames = "US\t62701\tSpringfield\tIllinois\tIL\tSangamon\t167\t\t\t39.8\t-89.6\t4\n" +
	"US\t62703\tSpringfield\tIllinois\tIL\tSangamon\t167\t\t\t39.7\t-89.6\t4\n" +
	"US\t62702\tSpringfield\tIllinois\tIL\tSangamon\t167\t\t\t39.8\t-89.6\t4\n" +
	"US\t65801\tSpringfield\tMissouri\tMO\tGreene\t077\t\t\t37.2\t-93.3\t4\n" +
	"US\t46401\tGary\tIndiana\tIN\tLake\t089\t\t\t41.6\t-87.3\t4\n" +
	"PR\t00601\tAdjuntas\tPuerto Rico\tPR\tAdjuntas\t001\t\t\t18.1\t-66.7\t1\n" +
	"US\tshort\n"

func TestRead_GroupsByCityAndState(t *testing.T) {
	d, err := Read(context.Background(), strings.NewReader(sampleGeoNames))
	require.NoError(t, err)

	assert.Equal(t, []string{"62701", "62702", "62703"}, d.Lookup("Springfield", "IL"))
	assert.Equal(t, []string{"65801"}, d.Lookup("Springfield", "MO"))
	assert.Equal(t, []string{"46401"}, d.Lookup("Gary", "IN"))
	assert.Equal(t, 3, d.Places())
}

func TestRead_SkipsOtherCountries(t *testing.T) {
	d, err := Read(context.Background(), strings.NewReader(sampleGeoNames))
	require.NoError(t, err)

	assert.Empty(t, d.Lookup("Adjuntas", "PR"))
}

func TestLookup_CaseInsensitive(t *testing.T) {
	d := NewDirectory()
	d.Add("Winston-Salem", "NC", "27101")

	assert.Equal(t, []string{"27101"}, d.Lookup("winston-salem", "nc"))
	assert.Equal(t, []string{"27101"}, d.Lookup(" WINSTON-SALEM ", "NC"))
	assert.Empty(t, d.Lookup("Winston", "NC"))
}

func TestAdd_DeduplicatesAndIgnoresBlank(t *testing.T) {
	d := NewDirectory()
	d.Add("Gary", "IN", "46401")
	d.Add("Gary", "IN", "46401")
	d.Add("Gary", "IN", " ")

	assert.Equal(t, []string{"46401"}, d.Lookup("Gary", "IN"))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "US.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoNames), 0o644))

	d, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, d.Lookup("Springfield", "IL"), 3)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipcode: open")
}
