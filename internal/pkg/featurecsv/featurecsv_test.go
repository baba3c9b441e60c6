package featurecsv_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geokit/internal/pkg/featurecsv"
)

func TestReadAll(t *testing.T) {
	in := "\xef\xbb\xbfName,Input,family,metadata\n" +
		`"Casco Viejo","POLYGON((0 0,1 0,1 1,0 0))",geography,"{""district"":1}"` + "\n" +
		",,,\n" +
		`,"POINT(1 2)",,` + "\n"

	got, err := featurecsv.ReadAll(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "Casco Viejo", got[0].Name)
	require.Equal(t, "geography", got[0].Family)
	require.Equal(t, "POLYGON((0 0,1 0,1 1,0 0))", got[0].Input)
	require.Equal(t, float64(1), got[0].Metadata["district"])

	require.Equal(t, "row 4", got[1].Name)
	require.Empty(t, got[1].Family)
	require.Nil(t, got[1].Metadata)
}

func TestNewReaderRequiresInput(t *testing.T) {
	_, err := featurecsv.NewReader(strings.NewReader("name,wkt\na,POINT(1 2)\n"))
	require.ErrorContains(t, err, "input column")
}

func TestBadMetadata(t *testing.T) {
	_, err := featurecsv.ReadAll(strings.NewReader("input,metadata\nPOINT(1 2),{nope\n"))
	require.ErrorContains(t, err, "line 2: metadata")
}

func TestRowLineSpansQuotedNewlines(t *testing.T) {
	in := "name,input\n" +
		"\"two\nlines\",POINT(1 2)\n" +
		"b,POINT(3 4)\n"

	r, err := featurecsv.NewReader(strings.NewReader(in))
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 2, first.Line)
	require.Equal(t, "two\nlines", first.Message.Name)

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 4, second.Line)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}
