// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/genesis"
)

// Config source kinds accepted by /v1/config and /v1/launch.
const (
	SourceTemplate = "template"
	SourceForm     = "form"
	SourceDocument = "document"
	SourceExisting = "existing"
)

// ConfigRequest describes a config source. Only the field matching Source is
// read.
type ConfigRequest struct {
	Source   string              `json:"source"`
	Spec     *genesis.LaunchSpec `json:"spec,omitempty"`
	Document string              `json:"document,omitempty"`
	Folder   string              `json:"folder,omitempty"`
}

// errBadRequest marks a request the bridge could not read at all.
var errBadRequest = errors.New("bad request")

// configSource turns c into a config source. An existing folder has to be
// one the session lists right now.
func (s *Server) configSource(ctx context.Context, c ConfigRequest) (genesis.ConfigSource, error) {
	switch c.Source {
	case SourceTemplate:
		return genesis.TemplateSource{}, nil
	case SourceForm:
		draft := genesis.DefaultSpec()
		if c.Spec != nil {
			draft = *c.Spec
		}
		return genesis.StructuredFormSource{Draft: draft}, nil
	case SourceDocument:
		return genesis.RawDocumentSource{Document: c.Document}, nil
	case SourceExisting:
		resolver, err := s.sess.SnapshotResolver(ctx)
		if err != nil {
			return nil, err
		}
		if err := resolver.Select(c.Folder); err != nil {
			return nil, err
		}
		return resolver.Resolve()
	default:
		return nil, fmt.Errorf("%w: unknown config source %q", errBadRequest, c.Source)
	}
}

type StateResponse struct {
	State    string `json:"state"`
	Reason   string `json:"reason,omitempty"`
	Version  string `json:"version,omitempty"`
	Mode     string `json:"mode,omitempty"`
	InFlight bool   `json:"inFlight"`
}

type SnapshotResponse struct {
	Number    uint64                     `json:"number"`
	Hash      string                     `json:"hash"`
	Filter    string                     `json:"filter,omitempty"`
	Balances  map[string]string          `json:"balances"`
	Contracts map[string]events.Contract `json:"contracts"`
}

func (s *Server) state() StateResponse {
	o := s.sess.Orchestrator()
	resp := StateResponse{
		State:    o.State().String(),
		Reason:   o.Reason(),
		Version:  o.Version(),
		InFlight: o.InFlight(),
	}
	if p := o.Payload(); p != nil {
		resp.Mode = p.Mode()
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.sess.Orchestrator().Install(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if _, err := s.sess.Orchestrator().Verify(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleGenesisCreator(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	out, err := s.sess.Orchestrator().InstallGenesisCreator(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"output": out})
}

// decodeConfig reads an optional ConfigRequest. ok is false for an empty body.
func (s *Server) decodeConfig(r *http.Request) (genesis.ConfigSource, bool, error) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	src, err := s.configSource(r.Context(), req)
	return src, err == nil, err
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	src, ok, err := s.decodeConfig(r)
	if err == nil && !ok {
		err = fmt.Errorf("%w: empty config request", errBadRequest)
	}
	if err == nil {
		err = s.sess.Submit(src)
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

// handleLaunch submits the body's config source when there is one, then
// launches the stored payload.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	src, ok, err := s.decodeConfig(r)
	if err == nil && ok {
		err = s.sess.Submit(src)
	}
	if err == nil {
		err = s.sess.Orchestrator().Launch(r.Context())
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.sess.Orchestrator().Kill(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleChainFolders(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	resolver, err := s.sess.SnapshotResolver(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"folders": resolver.Folders()})
}

// handleSnapshot returns the balances of the latest block. A filter query
// parameter replaces the active predicate; an empty value clears it.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rec := s.sess.Reconciler()
	if values, ok := r.URL.Query()["filter"]; ok {
		predicate := ""
		if len(values) > 0 {
			predicate = values[0]
		}
		if err := rec.SetFilter(predicate); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	snap := rec.Snapshot()
	s.writeJSON(w, http.StatusOK, SnapshotResponse{
		Number:    snap.Number,
		Hash:      snap.Hash,
		Filter:    rec.Predicate(),
		Balances:  rec.View(),
		Contracts: snap.Contracts,
	})
}
