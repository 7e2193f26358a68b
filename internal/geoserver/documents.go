package geoserver

import "strconv"

// documents.go defines the XML documents the map server's REST API
// exchanges. Only the fields creation calls need are modeled; lookups are
// existence checks and never decode response bodies.

type workspaceDoc struct {
	XMLName struct{} `xml:"workspace"`
	Name    string   `xml:"name"`
}

type connectionEntry struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type dataStoreDoc struct {
	XMLName              struct{}          `xml:"dataStore"`
	Name                 string            `xml:"name"`
	Type                 string            `xml:"type"`
	Enabled              bool              `xml:"enabled"`
	ConnectionParameters []connectionEntry `xml:"connectionParameters>entry"`
}

type featureTypeDoc struct {
	XMLName    struct{} `xml:"featureType"`
	Name       string   `xml:"name"`
	NativeName string   `xml:"nativeName"`
	Enabled    bool     `xml:"enabled"`
}

type coverageStoreDoc struct {
	XMLName   struct{} `xml:"coverageStore"`
	Name      string   `xml:"name"`
	Type      string   `xml:"type"`
	Enabled   bool     `xml:"enabled"`
	Workspace string   `xml:"workspace"`
	URL       string   `xml:"url"`
}

type coverageDoc struct {
	XMLName    struct{} `xml:"coverage"`
	Name       string   `xml:"name"`
	NativeName string   `xml:"nativeName"`
	Enabled    bool     `xml:"enabled"`
}

// dataStoreDoc builds the PostGIS datastore descriptor with the fixed
// connection tuning defaults: pool bounds, prepared-statement behavior,
// bounding-box looseness, and simplification.
func (c *Client) dataStoreDoc(name string) dataStoreDoc {
	return dataStoreDoc{
		Name:    name,
		Type:    "PostGIS",
		Enabled: true,
		ConnectionParameters: []connectionEntry{
			{Key: "host", Value: c.cfg.PGHost},
			{Key: "port", Value: strconv.Itoa(c.cfg.PGPort)},
			{Key: "database", Value: c.cfg.PGDatabase},
			{Key: "user", Value: c.cfg.PGUser},
			{Key: "passwd", Value: c.cfg.PGPassword},
			{Key: "schema", Value: c.cfg.PGSchema},
			{Key: "dbtype", Value: "postgis"},
			{Key: "max connections", Value: "10"},
			{Key: "min connections", Value: "1"},
			{Key: "preparedStatements", Value: "false"},
			{Key: "Loose bbox", Value: "true"},
			{Key: "Support on the fly geometry simplification", Value: "true"},
		},
	}
}
