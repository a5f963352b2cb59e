// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/ux"
)

// DownloadFile fetches url into destination. A progress bar is drawn on
// progress when it is a terminal.
func DownloadFile(ctx context.Context, url, destination string, progress io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file. HTTP response: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destination), constants.ReadWriteExecute); err != nil {
		return err
	}
	out, err := os.Create(destination) //nolint:gosec // G304: destination is built by the caller
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	var w io.Writer = out
	if progress != nil {
		if bar := ux.NewDownloadBar(progress, filepath.Base(destination), resp.ContentLength); bar != nil {
			w = io.MultiWriter(out, bar)
			defer func() { _ = bar.Finish() }()
		}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed writing %s: %w", destination, err)
	}
	return out.Sync()
}
