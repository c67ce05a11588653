package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// worker runs the per-task state machine against the shared client.
type worker struct {
	client     *http.Client
	root       string
	hashCheck  bool
	onlyBinary bool
	autoRename bool
	logger     logrus.FieldLogger
}

type fetched struct {
	contentType string
	body        []byte
}

// download returns the path the content was saved under, which differs
// from root/path/filename after an auto-rename.
func (worker *worker) download(ctx context.Context, task Task) (string, error) {
	log := worker.logger.WithFields(logrus.Fields{"url": task.URL, "path": task.Path})

	parsed, err := url.Parse(task.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", newError(KindURLIllegal, err)
	}

	filename := resolveFilename(parsed, task.Filename)
	if filename == "" {
		return "", newError(KindURLCannotDownload, nil)
	}

	log = log.WithField("filename", filename)

	dir := filepath.Join(worker.root, task.Path)
	filePath := filepath.Join(dir, filename)

	existing, err := worker.inspect(dir, filePath)
	if err != nil {
		return "", err
	}

	log.Debug("fetching")

	resp, err := worker.fetch(ctx, parsed)
	if err != nil {
		return "", err
	}

	if worker.onlyBinary && !isBinary(resp.contentType) {
		log.WithField("content_type", resp.contentType).Debug("skipping non-binary content")

		return "", newError(KindFileIsNotBinary, fmt.Errorf("content-type %q", resp.contentType))
	}

	if existing != nil {
		if HashBytes(resp.body) != *existing {
			return "", newError(KindDifferentFileExisted, nil)
		}

		log.Debug("existing file matches remote content")

		return filePath, nil
	}

	err = writeNew(filePath, resp.body)
	if err != nil {
		return "", err
	}

	if !worker.autoRename || filepath.Ext(filename) != "" {
		return filePath, nil
	}

	ext := extensionFor(resp.contentType)
	if ext == "" {
		return filePath, nil
	}

	renamed := filePath + "." + ext

	err = renameWithCheck(filePath, renamed, resp.body)
	if err != nil {
		return filePath, err
	}

	log.WithField("renamed", filepath.Base(renamed)).Debug("applied content-type extension")

	return renamed, nil
}

func resolveFilename(u *url.URL, explicit string) string {
	if explicit != "" {
		return explicit
	}

	// Segments stay percent-encoded: %2F and %2e%2e are kept literally.
	segments := strings.Split(u.EscapedPath(), "/")

	return segments[len(segments)-1]
}

// inspect checks the destination directory and file. It returns the
// digest of an existing file when hash checking is enabled.
func (worker *worker) inspect(dir, filePath string) (*Digest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		// Missing, or unreachable because an ancestor is a file. MkdirAll
		// reports which.
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, newError(KindFailedToCreateFolder, err)
		}

		return nil, nil
	}

	if !info.IsDir() {
		return nil, newError(KindFolderExistedAsFile, nil)
	}

	// A file that cannot be inspected counts as absent; the exclusive write
	// reports the real problem.
	info, err = os.Stat(filePath)
	if err != nil {
		return nil, nil
	}

	if info.IsDir() {
		return nil, newError(KindFileExistedAsFolder, nil)
	}

	if !worker.hashCheck {
		return nil, newError(KindFileExisted, nil)
	}

	digest, err := HashFile(filePath)
	if err != nil {
		return nil, newError(KindHashingError, err)
	}

	return &digest, nil
}

func (worker *worker) fetch(ctx context.Context, target *url.URL) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return nil, newError(KindURLIllegal, err)
	}

	resp, err := worker.client.Do(req)
	if err != nil {
		return nil, newError(KindHTTPError, err)
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, newError(KindResourceNotFound, nil)
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Kind: KindRequestNotOK, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindHTTPError, fmt.Errorf("reading body: %w", err))
	}

	return &fetched{contentType: resp.Header.Get("Content-Type"), body: body}, nil
}

func isBinary(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])

	return !strings.EqualFold(mediaType, "application/javascript") &&
		!strings.Contains(strings.ToLower(contentType), "text/html")
}

// extensionFor returns the content-type subtype without parameters.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}

	_, subtype, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}

	return strings.TrimSpace(subtype)
}

// writeNew creates path exclusively; an existing file is never replaced.
func writeNew(path string, body []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return newError(KindNoPermissionToWrite, err)
		}

		return newError(KindIOError, err)
	}

	_, err = file.Write(body)
	if err != nil {
		file.Close()
		os.Remove(path)

		return newError(KindIOError, fmt.Errorf("writing file: %w", err))
	}

	err = file.Close()
	if err != nil {
		return newError(KindIOError, fmt.Errorf("closing file: %w", err))
	}

	return nil
}

// renameWithCheck moves the freshly written file at from to to. When to
// already holds identical content the copy is skipped. On conflict the
// original file is left in place.
func renameWithCheck(from, to string, body []byte) error {
	info, err := os.Stat(to)

	switch {
	case err == nil && info.IsDir():
		return newError(KindFileExistedAsFolderWhenRename, nil)
	case err == nil:
		existing, hashErr := HashFile(to)
		if hashErr != nil {
			return newError(KindHashingErrorWhenRename, hashErr)
		}

		if existing != HashBytes(body) {
			return newError(KindDifferentFileExistedWhenRename, nil)
		}
	case errors.Is(err, fs.ErrNotExist):
		err = copyFile(from, to)
		if err != nil {
			return newError(KindIOErrorWhenRename, err)
		}
	default:
		return newError(KindIOErrorWhenRename, err)
	}

	err = os.Remove(from)
	if err != nil {
		return newError(KindIOErrorWhenRename, err)
	}

	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}

	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating target: %w", err)
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(to)

		return fmt.Errorf("copying: %w", err)
	}

	return dst.Close()
}
