package bloodwork

import "github.com/a3tai/mcp-bloodwork/internal/logging"

var parserLogger = logging.Logger(logging.SourceParser)
