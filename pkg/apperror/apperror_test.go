package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesOnKind(t *testing.T) {
	err := Newf(KindNotFound, "stock item %d not found", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConstraint))
}

func TestWrapKeepsCauseAndKind(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("write export: %w", Wrap(KindIO, cause, "write csv"))

	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindIO, KindOf(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestKindOfUnknownError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	err := ErrValidation.WithDetails([]string{"item_code"})

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"item_code"}, appErr.Details())
	assert.Nil(t, ErrValidation.Details())
}

func TestMetadataFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, MetadataFor(KindConstraint).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, MetadataFor(KindNotFound).HTTPStatus)
	assert.Equal(t, "Tidak ada data untuk diekspor", MetadataFor(KindNoData).PublicMessage)
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Kind("bogus")).HTTPStatus)
}
