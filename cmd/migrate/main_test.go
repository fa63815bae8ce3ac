package main

import (
	"testing"

	"github.com/Skryldev/boxing-ring/config"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DBConfig
		want    string
		wantErr bool
	}{
		{"sqlite from name", config.DBConfig{Driver: "sqlite3", Name: "boxing.db"}, "sqlite3://boxing.db", false},
		{"sqlite file uri", config.DBConfig{Driver: "sqlite3", URL: "file:boxing.db"}, "sqlite3://boxing.db", false},
		{"postgres url", config.DBConfig{Driver: "postgres", URL: "postgres://u:p@db/boxing?sslmode=disable"}, "postgres://u:p@db/boxing?sslmode=disable", false},
		{"postgres keyword dsn", config.DBConfig{Driver: "postgres", Host: "db", Name: "boxing"}, "", true},
		{"mysql", config.DBConfig{Driver: "mysql", URL: "u:p@tcp(db:3306)/boxing"}, "mysql://u:p@tcp(db:3306)/boxing", false},
		{"unknown driver", config.DBConfig{Driver: "oracle", Name: "x"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := databaseURL(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
