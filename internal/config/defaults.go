package config

import "longbox/internal/comicarchive"

const (
	defaultImportDir     = "~/comics/import"
	defaultLibraryDir    = "~/comics/library"
	defaultLogDir        = "~/.local/share/longbox/logs"
	defaultStateDB       = "~/.local/share/longbox/longbox.db"
	defaultLookupCacheDB = "~/.cache/longbox/lookup.db"
	defaultOutputFormat  = string(comicarchive.KindCBZ)
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultWorkers       = 4
	defaultCacheTTLDays  = 30
	defaultMetronTimeout = 30
	defaultMetronRetries = 3

	defaultTemplate = "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:3}"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImportDir:     defaultImportDir,
			LibraryDir:    defaultLibraryDir,
			LogDir:        defaultLogDir,
			StateDB:       defaultStateDB,
			LookupCacheDB: defaultLookupCacheDB,
		},
		Output: Output{
			Format:      defaultOutputFormat,
			WriteMetron: true,
			WriteComic:  true,
		},
		Naming: Naming{
			Templates: map[string]string{
				"default":         defaultTemplate,
				"annual":          "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_Annual_#{number:2}",
				"digital-chapter": "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_Chapter_#{number:3}",
				"graphic-novel":   "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:2}_GN",
				"hardcover":       "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:2}_HC",
				"omnibus":         "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:2}_OB",
				"trade-paperback": "{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:2}_TPB",
			},
		},
		Lookup: Lookup{
			CacheEnabled: true,
			CacheTTLDays: defaultCacheTTLDays,
			Metron: Metron{
				TimeoutSeconds: defaultMetronTimeout,
				Retries:        defaultMetronRetries,
			},
		},
		Sync: Sync{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
