package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

func TestParseListing(t *testing.T) {
	frame := dirproto.ListingHeader + "- a.txt (3 bytes)\n- b c.bin (5000 bytes)\n" + dirproto.ListingFooter

	entries, err := ParseListing(frame)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "a.txt", Size: 3}, {Name: "b c.bin", Size: 5000}}, entries)

	entries, err = ParseListing(dirproto.ListingHeader + dirproto.ListingFooter)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = ParseListing(dirproto.DirectoryError)
	assert.ErrorIs(t, err, dirproto.ErrNotListing)
}
