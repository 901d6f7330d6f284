package mongolsp

import "errors"

// ErrConfigNotFound is returned when no config file exists in the directory
// tree above the workspace root.
var ErrConfigNotFound = errors.New("no .mongodb-lsp.yaml found")
