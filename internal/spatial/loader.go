// Package spatial provides access to the PostGIS store backing vector
// ingestion: streaming bulk loads, spatial index creation, and authoritative
// metadata queries against loaded tables.
package spatial

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/mapforge/geoingest/internal/ingest"
)

// ConnParams identify the spatial store the loader streams into.
type ConnParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Schema   string
}

// Loader turns a shapefile into rows of a PostGIS table by generating a
// load script with the converter tool and streaming it straight into the
// store's command client, without buffering the script in memory.
type Loader struct {
	ConverterTool string // e.g. "shp2pgsql"
	ClientTool    string // e.g. "psql"
	Conn          ConnParams
}

// modeFlag maps a load mode to the converter's table-handling flag.
func modeFlag(mode ingest.LoadMode) string {
	switch mode {
	case ingest.LoadAppend:
		return "-a"
	case ingest.LoadDrop:
		return "-d"
	default:
		return "-c"
	}
}

// Load imports the shapefile into schema-qualified table using the given
// SRID and mode. Both child processes block the caller until they exit.
func (l *Loader) Load(ctx context.Context, shpPath, table string, srid int, mode ingest.LoadMode) error {
	qualified := l.Conn.Schema + "." + table

	convert := exec.CommandContext(ctx, l.ConverterTool,
		modeFlag(mode),
		"-s", strconv.Itoa(srid),
		shpPath,
		qualified,
	)

	client := exec.CommandContext(ctx, l.ClientTool,
		"-h", l.Conn.Host,
		"-p", strconv.Itoa(l.Conn.Port),
		"-U", l.Conn.User,
		"-d", l.Conn.Database,
		"-q",
		"-v", "ON_ERROR_STOP=1",
	)
	client.Env = append(client.Environ(), "PGPASSWORD="+l.Conn.Password)

	pipe, err := convert.StdoutPipe()
	if err != nil {
		return fmt.Errorf("loader pipe: %w", err)
	}
	client.Stdin = pipe

	if err := convert.Start(); err != nil {
		return fmt.Errorf("start %s: %w", l.ConverterTool, err)
	}
	if err := client.Start(); err != nil {
		_ = convert.Wait()
		return fmt.Errorf("start %s: %w", l.ClientTool, err)
	}

	convertErr := convert.Wait()
	clientErr := client.Wait()
	if convertErr != nil {
		return fmt.Errorf("%s %s: %w", l.ConverterTool, shpPath, convertErr)
	}
	if clientErr != nil {
		return fmt.Errorf("%s load into %s: %w", l.ClientTool, qualified, clientErr)
	}
	return nil
}
