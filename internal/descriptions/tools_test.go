package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	assert.Equal(t, IngestDescription, GetToolDescription(ToolIngest))
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		ToolDeleteDate,
		ToolHistory,
		ToolIngest,
		ToolResults,
		ToolServerInfo,
	}, GetAllToolNames())

	for _, name := range GetAllToolNames() {
		assert.NotEmpty(t, ToolDescriptions[name], name)
	}
}
