package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/collectable"
)

func TestBackpackContentsParsesAllFour(t *testing.T) {
	gives, err := BackpackContents([]byte("You get 20 shells, 25 nails, 5 rockets, 6 cells\n"))
	require.NoError(t, err)
	require.Len(t, gives, 4)
	assert.Equal(t, collectable.GiveShells, gives[0].Kind)
	assert.EqualValues(t, 20, gives[0].Amount)
	assert.EqualValues(t, 6, gives[3].Amount)
}

func TestBackpackContentsParsesPartial(t *testing.T) {
	gives, err := BackpackContents([]byte("You get 10 rockets\n"))
	require.NoError(t, err)
	require.Len(t, gives, 1)
	assert.Equal(t, collectable.GiveRockets, gives[0].Kind)
}

func TestBackpackContentsRejectsNonMatch(t *testing.T) {
	_, err := BackpackContents([]byte("You got the Grenade Launcher\n"))
	assert.Error(t, err)
}

func TestIsSoundFromClientPositionTolerance(t *testing.T) {
	client := [3]float32{100, 100, 0}
	center := [3]float32{100, 100, 4} // PlayerCenter shifts Z by 0.5*(-24+32)=4
	assert.True(t, IsSoundFromClientPosition(client, center))
	assert.False(t, IsSoundFromClientPosition(client, [3]float32{100, 100, 10}))
}

func TestIsIgnoredPrintText(t *testing.T) {
	assert.True(t, isIgnoredPrintText([]byte("You got the gold key\n")))
	assert.False(t, isIgnoredPrintText([]byte("You got the shells\n")))
}
