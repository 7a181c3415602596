package config

import (
	"errors"
	"io/fs"
	"os"

	derrors "git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/fsutil"
)

// exampleConfig documents every key with its default value.
const exampleConfig = `# docpost configuration
source:
  dir: docs

output:
  dir: public
  assets_dir: assets
  clean: false

site:
  title: Documentation
  lang: en
  unsafe_html: false
  include_drafts: false

transforms:
  # Every transform only touches elements inside this container.
  content_selector: main
  anchor_levels: [2, 3, 4]
  anchor_symbol: "#"
  external_link_target: _blank
  external_link_rel: [noopener, noreferrer]
  highlight_style: github
  copy_button_label: Copy
  # disabled: [table_wrapper]

search:
  enabled: true
  content_selector: main
  index_file: search-index.json
  script_dir: js
  script_name: search.js
  boosts:
    title: 10
    headings: 5
    body: 1

build:
  workers: 0 # one per CPU
  format: whitespace # or none

logging:
  level: ${DOCPOST_LOG_LEVEL:-info}
  format: text

metrics:
  enabled: false
  path: /metrics

serve:
  listen: 127.0.0.1:1313
  debounce: 300ms
`

// Init writes an example configuration file. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return derrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			UserAction().
			Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "stat configuration").Build()
	}
	if err := fsutil.WriteFileAtomic(path, []byte(exampleConfig), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
