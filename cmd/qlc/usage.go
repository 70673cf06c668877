package main

const rootUsage = `qlc - GraphQL document type compiler

USAGE:
  qlc [command] [flags] [root_dir]

COMMANDS:
  compile          Compile every .graphql document under root_dir (default)
  watch            Compile, then recompile whenever documents or the schema change
  schema           Print the loaded schema as SDL
  help             Show help for any command

Flags may appear before or after root_dir (default: .).
`

const compileUsage = `compile FLAGS:
  -c, --config-file <path>                        RC file (default: <root_dir>/.qlcrc.json)
  -s, --schema-file <path>                        Introspection JSON (default: <root_dir>/schema.json)
  --use-custom-scalars                            Name custom scalars instead of using any
  --custom-scalar-prefix <prefix>                 Prefix custom scalar names; implies --use-custom-scalars
  --root-dir-import-prefix <prefix>               Prefix of root relative imports
  --global-types-module-name <name>               Globals module name (default: graphql-globals)
  --typed-graphql-documentnode-module-name <name> Typed document node module
                                                  (default: @notarize/qlc-cli/typed-documentnode)
  --disable-readonly-types                        Do not mark fields readonly
  --show-deprecation-warnings                     Warn when deprecated fields are selected
  --num-threads <n>                               Worker count (default: number of CPUs, at most 8)
  --target <typescript|go>                        Output language (default: typescript)
  --go-package <name>                             Package of generated Go files (default: directory name)
  --no-color                                      Disable colored output
  --log-level <debug|info|warn|error>             Operational log level (default: warn)
  --otel-endpoint <addr>                          OTLP collector endpoint
  --otel-service <name>                           OpenTelemetry service name (default: qlc)
`

const watchUsage = `watch FLAGS:
  Same as compile. Runs until interrupted.
`

const schemaUsage = `schema FLAGS:
  -c, --config-file <path>  RC file (default: <root_dir>/.qlcrc.json)
  -s, --schema-file <path>  Introspection JSON (default: <root_dir>/schema.json)
  -o, --out <file>          Write SDL to file (default: stdout)
`
