package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDisplayTitleFallback(t *testing.T) {
	assert.Equal(t, "Manipulator Kinematics", Source{Title: "Manipulator Kinematics", Chapter: "Chapter 5"}.DisplayTitle())
	assert.Equal(t, "Chapter 5: Motion", Source{Chapter: "Chapter 5: Motion", Section: "5.2"}.DisplayTitle())
	assert.Equal(t, "5.2 Forward and Inverse Kinematics", Source{Section: "5.2 Forward and Inverse Kinematics"}.DisplayTitle())
	assert.Equal(t, "Untitled source", Source{URL: "/docs/motion"}.DisplayTitle())
}
