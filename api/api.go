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

// Package api serves stitched ZMW reads built from PacBio subreads and scraps
// BAM files held in Google Cloud Storage.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/format"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/regiondb"
	"github.com/googlegenomics/zmw/internal/storage"
	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/googlegenomics/zmw/internal/zmw"
	"github.com/sirupsen/logrus"
)

const (
	zmwsPath    = "/zmws"
	headersPath = "/headers"
	regionsPath = "/regions"

	formatBAM  = "BAM"
	formatJSON = "JSON"

	bamContentType = "application/octet-stream"
)

var (
	errInvalidOrUnspecifiedID = errors.New("invalid or unspecified ID")
	errNotSubreads            = errors.New("object is not a subreads BAM file")
	errNoRegionDB             = errors.New("no region database configured")
)

// Server serves stitched ZMWs.  Must be created with NewServer.
type Server struct {
	newStorageClient storage.NewClientFunc
	whitelist        map[string]bool
	regions          *regiondb.DB
	workers          int
	log              logrus.FieldLogger
}

// NewServer returns a new Server that calls newStorageClient on each request
// to determine which storage client to use.
func NewServer(newStorageClient storage.NewClientFunc, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		newStorageClient: newStorageClient,
		whitelist:        make(map[string]bool),
		log:              log,
	}
}

// Whitelist adds buckets to the set of buckets which the server is allowed to
// access. If Whitelist is never called for a given Server then reads from any
// bucket are allowed.
func (server *Server) Whitelist(buckets []string) {
	for _, bucket := range buckets {
		server.whitelist[bucket] = true
	}
}

// SetRegionDB enables the regions endpoint, which answers from db.
func (server *Server) SetRegionDB(db *regiondb.DB) { server.regions = db }

// SetWorkers bounds the number of ZMWs stitched at once for each request.
func (server *Server) SetWorkers(n int) { server.workers = n }

// Export registers the API endpoints with router:
//
//	GET /zmws/<bucket>/<object>?format=BAM|JSON&hole=N&skipInvalid=true&losslessFrames=true
//	GET /headers/<bucket>/<object>?losslessFrames=true
//	GET /regions/<read group>
//	GET /regions/<read group>/<hole>
//
// <object> names a ".subreads.bam" file; its ".scraps.bam" companion is read
// too when it exists.
func (server *Server) Export(router gin.IRouter) {
	api := router.Group("", requestLogger(server.log), forwardOrigin)
	api.GET(zmwsPath+"/:bucket/*object", server.serveZMWs)
	api.GET(headersPath+"/:bucket/*object", server.serveHeader)
	api.GET(regionsPath+"/:readgroup", server.serveHoles)
	api.GET(regionsPath+"/:readgroup/:hole", server.serveRegions)
}

func (server *Server) serveZMWs(c *gin.Context) {
	ctx := c.Request.Context()
	log := requestLog(c)

	outputFormat, err := parseFormat(c.Query("format"))
	if err != nil {
		writeError(c, newUnsupportedFormatError(err))
		return
	}
	holes, err := parseHoles(c.QueryArray("hole"))
	if err != nil {
		writeError(c, newInvalidInputError("parsing hole numbers", err))
		return
	}
	skipInvalid, err := parseBool(c.Query("skipInvalid"))
	if err != nil {
		writeError(c, newInvalidInputError("parsing skipInvalid", err))
		return
	}
	enc, err := parseFrameEncoding(c.Query("losslessFrames"))
	if err != nil {
		writeError(c, newInvalidInputError("parsing losslessFrames", err))
		return
	}

	client, bucket, object, err := server.open(c)
	if err != nil {
		writeError(c, err)
		return
	}
	scrapsObject, ok := zmw.ScrapsName(object)
	if !ok {
		writeError(c, newInvalidInputError("parsing readset ID", errNotSubreads))
		return
	}

	subreads, closeSubreads, err := openBAM(ctx, client.NewObjectHandle(bucket, object))
	if err != nil {
		writeError(c, newStorageError("opening subreads", err))
		return
	}
	defer closeSubreads()

	var scrapsReader zmw.RecordReader
	scraps, closeScraps, err := openBAM(ctx, client.NewObjectHandle(bucket, scrapsObject))
	if err == nil {
		defer closeScraps()
		scrapsReader = scraps
	} else if errors.Is(err, storage.ErrNotFound) {
		log.WithField("scraps", scrapsObject).Info("No scraps file, stitching subreads only")
	} else {
		writeError(c, newStorageError("opening scraps", err))
		return
	}

	header, err := bamrecord.NewHeader(subreads.Header())
	if err != nil {
		writeError(c, newInvalidInputError("reading header", err))
		return
	}

	reader := zmw.NewReader(subreads, scrapsReader)
	if holes != nil {
		reader.Whitelist(holes)
	}
	pipeline := &zmw.Pipeline{
		Header:      header,
		Workers:     server.workers,
		SkipInvalid: skipInvalid,
		Log:         log,
	}

	var sink recordSink
	switch outputFormat {
	case formatBAM:
		encoder, err := bamrecord.NewEncoder(subreads.Header(), enc)
		if err != nil {
			writeError(c, newInvalidInputError("reading header", err))
			return
		}
		sink = &bamSink{c: c, encoder: encoder}
	case formatJSON:
		sink = &jsonSink{}
	}

	summary, err := pipeline.Run(ctx, reader, sink.write)
	if err != nil {
		if sink.started() {
			// The status has already been sent, so all that is left is to
			// truncate the response.
			log.WithError(err).Error("Failed to stream ZMWs")
			return
		}
		writeError(c, newStitchingError(err))
		return
	}
	if err := sink.finish(c); err != nil {
		log.WithError(err).Error("Failed to finish response")
		return
	}
	log.WithFields(summary.Fields()).Info("Served ZMWs")
}

func (server *Server) serveHeader(c *gin.Context) {
	enc, err := parseFrameEncoding(c.Query("losslessFrames"))
	if err != nil {
		writeError(c, newInvalidInputError("parsing losslessFrames", err))
		return
	}
	client, bucket, object, err := server.open(c)
	if err != nil {
		writeError(c, err)
		return
	}

	data, err := client.NewObjectHandle(bucket, object).NewRangeReader(c.Request.Context(), 0, -1)
	if err != nil {
		writeError(c, newStorageError("opening data", err))
		return
	}
	defer data.Close()

	text, err := format.ReadHeader(data)
	if err != nil {
		writeError(c, newInvalidInputError("reading header", err))
		return
	}
	h, err := sam.NewHeader(text, nil)
	if err != nil {
		writeError(c, newInvalidInputError("parsing header", err))
		return
	}
	header, err := bamrecord.NewHeader(h)
	if err != nil {
		writeError(c, newInvalidInputError("parsing read groups", err))
		return
	}
	stitched, err := bamrecord.StitchedHeader(h, enc)
	if err != nil {
		writeError(c, err)
		return
	}
	stitchedText, err := stitched.MarshalText()
	if err != nil {
		writeError(c, fmt.Errorf("marshaling header: %v", err))
		return
	}

	c.JSON(http.StatusOK, headerJSON{
		Header:     string(stitchedText),
		ReadGroups: newReadGroupsJSON(header.ReadGroups()),
	})
}

func (server *Server) serveRegions(c *gin.Context) {
	if server.regions == nil {
		writeError(c, newNotFoundError("looking up regions", errNoRegionDB))
		return
	}
	hole, err := strconv.ParseInt(c.Param("hole"), 10, 32)
	if err != nil {
		writeError(c, newInvalidInputError("parsing hole number", err))
		return
	}

	ctx := c.Request.Context()
	readGroup := c.Param("readgroup")
	z, err := server.regions.ZMW(ctx, readGroup, int32(hole))
	if err != nil {
		writeError(c, newRegionDBError(err))
		return
	}
	regions, err := server.regions.Regions(ctx, readGroup, int32(hole))
	if err != nil {
		writeError(c, newRegionDBError(err))
		return
	}
	c.JSON(http.StatusOK, newStoredZMWJSON(z, regions))
}

func (server *Server) serveHoles(c *gin.Context) {
	if server.regions == nil {
		writeError(c, newNotFoundError("looking up regions", errNoRegionDB))
		return
	}
	holes, err := server.regions.HoleNumbers(c.Request.Context(), c.Param("readgroup"))
	if err != nil {
		writeError(c, newRegionDBError(err))
		return
	}
	if holes == nil {
		holes = []int32{}
	}
	c.JSON(http.StatusOK, holesJSON{Holes: holes})
}

// open checks the request ID against the whitelist and returns a storage
// client for it.
func (server *Server) open(c *gin.Context) (storage.Client, string, string, error) {
	bucket, object, err := parseID(c.Param("bucket"), c.Param("object"))
	if err != nil {
		return nil, "", "", newInvalidInputError("parsing readset ID", err)
	}
	if err := server.checkWhitelist(bucket); err != nil {
		return nil, "", "", newPermissionDeniedError("checking whitelist", err)
	}
	client, _, err := server.newStorageClient(c.Request)
	if err != nil {
		return nil, "", "", newStorageError("creating client", err)
	}
	return client, bucket, object, nil
}

func (server *Server) checkWhitelist(bucket string) error {
	if len(server.whitelist) == 0 || server.whitelist[bucket] {
		return nil
	}
	return fmt.Errorf("access to bucket %s is not allowed", bucket)
}

// openBAM opens object as a BAM file.  The returned function closes both the
// BAM reader and the underlying object.
func openBAM(ctx context.Context, object storage.ObjectHandle) (*bam.Reader, func(), error) {
	data, err := object.NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, nil, err
	}
	br, err := zmw.OpenBAM(data)
	if err != nil {
		data.Close()
		return nil, nil, err
	}
	return br, func() {
		br.Close()
		data.Close()
	}, nil
}

// parseID returns the GCS bucket and object named by the bucket and object
// path parameters, or an error.  The object parameter is a gin wildcard and
// starts with a slash.
func parseID(bucket, object string) (string, string, error) {
	object = strings.TrimPrefix(object, "/")
	if bucket == "" || object == "" {
		return "", "", errInvalidOrUnspecifiedID
	}
	return bucket, object, nil
}

func parseFormat(f string) (string, error) {
	switch f {
	case "", formatBAM:
		return formatBAM, nil
	case formatJSON:
		return formatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q", f)
}

// parseHoles returns nil when no hole numbers are given.
func parseHoles(values []string) ([]int32, error) {
	if len(values) == 0 {
		return nil, nil
	}
	holes := make([]int32, 0, len(values))
	for _, value := range values {
		for _, field := range strings.Split(value, ",") {
			n, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, err
			}
			holes = append(holes, int32(n))
		}
	}
	return holes, nil
}

func parseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

// parseFrameEncoding returns the encoding of IPD and pulse width data in BAM
// responses, which is lossy unless lossless is set.
func parseFrameEncoding(lossless string) (frames.Encoding, error) {
	ok, err := parseBool(lossless)
	if err != nil {
		return 0, err
	}
	if ok {
		return frames.Lossless, nil
	}
	return frames.Lossy, nil
}

// recordSink receives the stitched records of a request.
type recordSink interface {
	write(*virtual.Record) error
	// started reports whether any part of the response has been sent.
	started() bool
	finish(*gin.Context) error
}

// bamSink streams records as BAM.  The response starts with the first record
// so that stitching errors before it can still be reported as JSON.
type bamSink struct {
	c       *gin.Context
	encoder *bamrecord.Encoder
	w       *bam.Writer
}

func (s *bamSink) write(r *virtual.Record) error {
	if err := s.start(); err != nil {
		return err
	}
	rec, err := s.encoder.Encode(r)
	if err != nil {
		return err
	}
	return s.w.Write(rec)
}

func (s *bamSink) start() error {
	if s.w != nil {
		return nil
	}
	s.c.Header("Content-Type", bamContentType)
	s.c.Status(http.StatusOK)
	w, err := bam.NewWriter(s.c.Writer, s.encoder.Header(), 1)
	if err != nil {
		return fmt.Errorf("creating BAM writer: %v", err)
	}
	s.w = w
	return nil
}

func (s *bamSink) started() bool { return s.w != nil }

func (s *bamSink) finish(*gin.Context) error {
	// An empty result is still a valid BAM file.
	if err := s.start(); err != nil {
		return err
	}
	return s.w.Close()
}

type jsonSink struct {
	zmws []zmwJSON
}

func (s *jsonSink) write(r *virtual.Record) error {
	s.zmws = append(s.zmws, newZMWJSON(r))
	return nil
}

func (s *jsonSink) started() bool { return false }

func (s *jsonSink) finish(c *gin.Context) error {
	if s.zmws == nil {
		s.zmws = []zmwJSON{}
	}
	c.JSON(http.StatusOK, gin.H{"zmws": s.zmws})
	return nil
}
