package sqlassets

import _ "embed"

//go:embed schema/wallpapers.sql
var WallpapersSQL string

//go:embed schema/categories.sql
var CategoriesSQL string
