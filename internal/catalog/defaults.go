package catalog

// DefaultAuthor is the attribution used by every page of the GeoGig table.
const DefaultAuthor = "OpenGeo <http://opengeo.org>"

var geogigEntries = []Entry{
	page("geogig", "geogig", "Runs a geogig command"),
	page("init", "geogig-init", "Create and initialize a new geogig repository"),
	page("add", "geogig-add", "Stage changes to the index to prepare for commit"),
	page("branch", "geogig-branch", "Create, delete, or list branches"),
	page("checkout", "geogig-checkout", "Checkout a branch"),
	page("commit", "geogig-commit", "Commits staged changes to the repository"),
	page("config", "geogig-config", "Get and set repository or global options"),
	page("cherrypick", "geogig-cherrypick", "Apply the changes introduced by some existing commits"),
	page("diff", "geogig-diff", "Show changes between two tree-ish references."),
	page("log", "geogig-log", "Show commit logs"),
	page("help", "geogig-help", "Get help for a command"),
	page("status", "geogig-status", "Show the working tree and index status"),
	page("merge", "geogig-merge", "Merge two or more histories into one"),
	page("rebase", "geogig-rebase", "Forward-port local commits to the updated upstream head"),
	page("reset", "geogig-reset", "Reset current HEAD to the specified state"),
	page("remote", "geogig-remote", "Remote management command extension"),
	page("remoteadd", "geogig-remote-add", "Add a repository whose branches should be tracked"),
	page("remotelist", "geogig-remote-list", "List all repositories being tracked"),
	page("remoteremove", "geogig-remote-remove", "Remove a repository whose branches are being tracked"),
	page("revert", "geogig-revert", "Revert changes that were committed"),
	page("clone", "geogig-clone", "Clone a repository into a new directory"),
	page("fetch", "geogig-fetch", "Download objects and refs from another repository"),
	page("pull", "geogig-pull", "Fetch from and merge with another repository or a local branch"),
	page("push", "geogig-push", "Update remote refs along with associated objects"),
	page("pg", "geogig-pg", "PostGIS command extension"),
	page("pgimport", "geogig-pg-import", "Import features from a PostGIS database"),
	page("pgexport", "geogig-pg-export", "Export features to a PostGIS database"),
	page("pglist", "geogig-pg-list", "List tables in a PostGIS database"),
	page("pgdescribe", "geogig-pg-describe", "Describe properties of a table in a PostGIS database"),
	page("sl", "geogig-sl", "SpatiaLite command extension"),
	page("slimport", "geogig-sl-import", "Import features from a SpatiaLite database"),
	page("slexport", "geogig-sl-export", "Export features to a SpatiaLite database"),
	page("sllist", "geogig-sl-list", "List tables in a SpatiaLite database"),
	page("sldescribe", "geogig-sl-describe", "Describe properties of a table in a SpatiaLite database"),
	page("shp", "geogig-shp", "Shapefile command extension"),
	page("shpimport", "geogig-shp-import", "Import features from shapefiles"),
	page("shpexport", "geogig-shp-export", "Import features to shapefiles"),
}

func page(source, name, description string) Entry {
	return Entry{
		SourceName:  source,
		PageName:    name,
		Description: description,
		Authors:     []string{DefaultAuthor},
		Section:     1,
	}
}

// GeoGig returns the compiled-in catalog of GeoGig command pages.
func GeoGig() *Catalog {
	return MustNew(geogigEntries...)
}
