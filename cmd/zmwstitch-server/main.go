// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This binary serves stitched ZMW reads from subreads BAM files in GCS.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/zmw/api"
	"github.com/googlegenomics/zmw/internal/regiondb"
	"github.com/googlegenomics/zmw/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	port = flag.Int("port", 80, "HTTP service port")

	secure    = flag.Bool("secure", false, "serve in HTTPS-only mode and forward client bearer tokens")
	httpsCert = flag.String("https_cert", "", "HTTPS certificate file")
	httpsKey  = flag.String("https_key", "", "HTTPS key file")

	buckets   = flag.String("buckets", "", "if set, restricts reads to a comma-separated list of buckets")
	directory = flag.String("directory", "", "if set, serves <directory>/<bucket>/<object> instead of GCS objects")
	regionsDB = flag.String("regions_db", "", "if set, serves region tables from this SQLite database")
	workers   = flag.Int("workers", 0, "number of ZMWs stitched at once per request; 0 uses every CPU")

	logLevel = flag.String("log_level", "info", "log level")
)

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid -log_level: %v", err)
	}
	logrus.SetLevel(level)

	if *secure && (*httpsCert == "" || *httpsKey == "") {
		logrus.Fatalf("You must specify both -https_cert and -https_key in secure mode.")
	}

	newStorageClient := storage.NewPublicClient
	if *secure {
		newStorageClient = storage.NewClientFromBearerToken
	}
	if *directory != "" {
		client := storage.DirectoryClient{Root: *directory}
		newStorageClient = func(*http.Request) (storage.Client, http.Header, error) {
			return client, nil, nil
		}
	}

	server := api.NewServer(newStorageClient, logrus.StandardLogger())
	server.SetWorkers(*workers)
	if *buckets != "" {
		server.Whitelist(strings.Split(*buckets, ","))
	}
	if *regionsDB != "" {
		db, err := regiondb.Open(*regionsDB)
		if err != nil {
			logrus.Fatalf("Opening region database: %v", err)
		}
		defer db.Close()
		server.SetRegionDB(db)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	server.Export(router)

	address := fmt.Sprintf(":%d", *port)
	if *secure {
		if err := router.RunTLS(address, *httpsCert, *httpsKey); err != nil {
			logrus.Fatalf("HTTPS server returned an error: %v", err)
		}
	} else {
		if err := router.Run(address); err != nil {
			logrus.Fatalf("HTTP server returned an error: %v", err)
		}
	}
}
