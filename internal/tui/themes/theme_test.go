package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	assert.Equal(t, CatppuccinMocha.Primary, ByName("Catppuccin").Primary)
	assert.Equal(t, CatppuccinMocha.Primary, ByName(" mocha ").Primary)
	assert.Equal(t, Default.Primary, ByName("default").Primary)
	assert.Equal(t, Default.Primary, ByName("no-such-theme").Primary)
}

func TestTableStylesUseTheme(t *testing.T) {
	styles := Default.TableStyles()
	assert.Equal(t, Default.Selected.GetBackground(), styles.Selected.GetBackground())
}
