package config

import (
	"flag"
	"io"
)

// parseFlags overlays command-line flags and returns the remaining
// positional arguments.
//
// Supported flags:
//
//	-a string     address and port of the server
//	-t duration   request timeout
//	-s string     session file
//	-c, -config   JSON config file (read by parseJson)
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.SessionPath, "s", cfg.SessionPath, "session file")

	var path string
	fs.StringVar(&path, "c", "", "path to config file")
	fs.StringVar(&path, "config", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
