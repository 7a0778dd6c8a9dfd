package root

import (
	seedcmd "github.com/wallpapersverse/wallpapers-api/apps/cli/cmd/seed"
	slugscmd "github.com/wallpapersverse/wallpapers-api/apps/cli/cmd/slugs"
)

func init() {
	Root().AddCommand(slugscmd.Command())
	Root().AddCommand(seedcmd.Command())
}
