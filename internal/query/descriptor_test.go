package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-fire/firemock-sub000/internal/value"
)

func TestDescriptor_AtNormalisesPath(t *testing.T) {
	assert.Equal(t, "people/a", At("/people.a/").Path)
	assert.True(t, At("x").IsPlain())
}

func TestDescriptor_StepsDoNotShareState(t *testing.T) {
	base := At("people").Where(StartAt{Value: value.Number(1)})
	a := base.Where(EndAt{Value: value.Number(2)})
	b := base.Where(EqualTo{Value: value.Number(3)})

	assert.Len(t, base.Filters, 1)
	assert.Len(t, a.Filters, 2)
	assert.Len(t, b.Filters, 2)
	assert.IsType(t, EndAt{}, a.Filters[1])
	assert.IsType(t, EqualTo{}, b.Filters[1])
}

func TestDescriptor_OrderTwiceFails(t *testing.T) {
	d, err := At("x").OrderBy(ByKey{})
	require.NoError(t, err)
	_, err = d.OrderBy(ByValue{})
	assert.ErrorIs(t, err, ErrOrderAlreadySet)
}

func TestDescriptor_LimitErrors(t *testing.T) {
	_, err := At("x").WithLimit(Limit{N: -1})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	d, err := At("x").WithLimit(Limit{N: 1})
	require.NoError(t, err)
	_, err = d.WithLimit(Limit{N: 2, Last: true})
	assert.ErrorIs(t, err, ErrLimitAlreadySet)
}

func TestDescriptor_ValidateAllowsKeyUnderChildOrder(t *testing.T) {
	d, err := At("x").OrderBy(ByChild{Name: "age"})
	require.NoError(t, err)
	d = d.Where(EqualTo{Value: value.Number(1), Key: "age"})
	assert.NoError(t, d.Validate())
}

func TestDescriptor_String(t *testing.T) {
	d, err := At("people").OrderBy(ByChild{Name: "age"})
	require.NoError(t, err)
	d = d.Where(StartAt{Value: value.Number(5)})
	d, err = d.WithLimit(Limit{N: 1})
	require.NoError(t, err)

	assert.Equal(t, "/people.orderByChild(age).startAt(5).limitToFirst(1)", d.String())
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := &Error{Code: CodeInvalidLimit, Message: "other text"}
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.NotErrorIs(t, err, ErrLimitAlreadySet)
}
