// Package stamper builds the key-value context a page is rendered with.
// Values come from three places, applied in order so later ones win:
// workspace status ("stamp") files holding one "KEY VALUE" pair per line,
// JSON or YAML context files whose nested objects are flattened to dotted
// keys, and explicit NAME=VALUE variables. Variable values may reference
// stamps with single-brace {KEY} placeholders; unknown placeholders are left
// untouched.
package stamper
