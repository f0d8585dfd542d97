package iup

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func clearBootstrapEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLibPath, "")
	t.Setenv("IUP_CACHE_DIR", "")
	t.Setenv("IUP_VERSION", "")
	t.Setenv("IUP_DISABLE_DOWNLOAD", "")
}

func hostArtifact(t *testing.T) iupArtifact {
	t.Helper()
	artifact, err := resolveIupArtifact(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no published IUP artifact for this platform: %v", err)
	}
	return artifact
}

// buildIupArchive produces an in-memory release archive in the artifact's
// format containing the named library files at the archive root, the way
// the published archives are laid out.
func buildIupArchive(t *testing.T, artifact iupArtifact, fileNames ...string) []byte {
	t.Helper()
	if len(fileNames) == 0 {
		fileNames = []string{artifact.primaryLibrary}
	}

	content := []byte("fake shared library payload")

	switch artifact.archiveExtension {
	case "tar.gz":
		var buf bytes.Buffer
		gzw := gzip.NewWriter(&buf)
		tw := tar.NewWriter(gzw)
		for _, name := range fileNames {
			if err := tw.WriteHeader(&tar.Header{
				Name: name,
				Mode: 0o755,
				Size: int64(len(content)),
			}); err != nil {
				t.Fatal(err)
			}
			if _, err := tw.Write(content); err != nil {
				t.Fatal(err)
			}
		}
		if err := tw.Close(); err != nil {
			t.Fatal(err)
		}
		if err := gzw.Close(); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	case "zip":
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		for _, name := range fileNames {
			w, err := zw.Create(name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write(content); err != nil {
				t.Fatal(err)
			}
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	default:
		t.Fatalf("unsupported archive extension %q", artifact.archiveExtension)
		return nil
	}
}

func newArchiveServer(t *testing.T, payload []byte, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func bootstrapTestOptions(server *httptest.Server, cacheDir string) []BootstrapOption {
	return []BootstrapOption{
		WithBootstrapCacheDir(cacheDir),
		WithBootstrapVersion("3.30"),
		withBootstrapBaseURL(server.URL),
		withBootstrapHTTPClient(server.Client()),
	}
}

func TestResolveIupArtifact(t *testing.T) {
	tests := []struct {
		goos, goarch string
		wantPlatform string
		wantExt      string
		wantPrimary  string
		wantErr      bool
	}{
		{goos: "linux", goarch: "amd64", wantPlatform: "Linux54_64", wantExt: "tar.gz", wantPrimary: "libiup.so"},
		{goos: "windows", goarch: "amd64", wantPlatform: "Win64_dll16", wantExt: "zip", wantPrimary: "iup.dll"},
		{goos: "linux", goarch: "arm", wantErr: true},
		{goos: "plan9", goarch: "amd64", wantErr: true},
		{goos: "windows", goarch: "386", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			artifact, err := resolveIupArtifact(tt.goos, tt.goarch)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if artifact.platform != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", artifact.platform, tt.wantPlatform)
			}
			if artifact.archiveExtension != tt.wantExt {
				t.Errorf("extension = %q, want %q", artifact.archiveExtension, tt.wantExt)
			}
			if artifact.primaryLibrary != tt.wantPrimary {
				t.Errorf("primary library = %q, want %q", artifact.primaryLibrary, tt.wantPrimary)
			}
		})
	}
}

func TestArtifactNaming(t *testing.T) {
	artifact := iupArtifact{platform: "Linux54_64", archiveExtension: "tar.gz"}

	if got := artifact.archiveName("3.30"); got != "iup-3.30_Linux54_64_lib" {
		t.Errorf("archiveName = %q", got)
	}
	if got := artifact.archiveFilename("3.30"); got != "iup-3.30_Linux54_64_lib.tar.gz" {
		t.Errorf("archiveFilename = %q", got)
	}

	wantURL := "https://downloads.sourceforge.net/project/iup/3.30/iup-3.30_Linux54_64_lib.tar.gz"
	if got := artifact.downloadURL(defaultBootstrapBaseURL, "3.30"); got != wantURL {
		t.Errorf("downloadURL = %q, want %q", got, wantURL)
	}
	if got := artifact.downloadURL(defaultBootstrapBaseURL+"/", "3.30"); got != wantURL {
		t.Errorf("downloadURL with trailing slash = %q, want %q", got, wantURL)
	}
}

func TestNormalizeIupVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "3.30", want: "3.30"},
		{input: "v3.30", want: "3.30"},
		{input: "  3.30  ", want: "3.30"},
		{input: "3.30.1", want: "3.30.1"},
		{input: "", wantErr: true},
		{input: "3", wantErr: true},
		{input: "3.30.1.2", wantErr: true},
		{input: "3.x", wantErr: true},
		{input: "3..30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			got, err := normalizeIupVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("normalizeIupVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBootstrapBoolEnv(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "", want: false},
		{value: "true", want: true},
		{value: "false", want: false},
		{value: "1", want: true},
		{value: "0", want: false},
		{value: "yes", want: true},
		{value: "NO", want: false},
		{value: "on", want: true},
		{value: "off", want: false},
		{value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.value), func(t *testing.T) {
			t.Setenv("IUP_TEST_BOOL", tt.value)
			got, err := parseBootstrapBoolEnv("IUP_TEST_BOOL")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseBootstrapBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSecureArchiveJoin(t *testing.T) {
	base := t.TempDir()

	valid := []string{
		"libiup.so",
		"lib/libiup.so",
		"include/iup.h",
	}
	for _, entry := range valid {
		if _, err := secureArchiveJoin(base, entry); err != nil {
			t.Errorf("expected entry %q to be accepted, got %v", entry, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		".",
		"..",
		"../evil.so",
		"lib/../../evil.so",
		"/etc/passwd",
		"\\windows\\system32\\evil.dll",
		"C:\\windows\\evil.dll",
	}
	for _, entry := range invalid {
		if _, err := secureArchiveJoin(base, entry); err == nil {
			t.Errorf("expected entry %q to be rejected", entry)
		}
	}
}

func TestBootstrapOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  BootstrapOption
	}{
		{name: "empty library path", opt: WithBootstrapLibraryPath("  ")},
		{name: "empty cache dir", opt: WithBootstrapCacheDir("")},
		{name: "empty version", opt: WithBootstrapVersion("")},
		{name: "empty checksum", opt: WithBootstrapExpectedSHA256("")},
		{name: "short checksum", opt: WithBootstrapExpectedSHA256("abc123")},
		{name: "non-hex checksum", opt: WithBootstrapExpectedSHA256(strings.Repeat("z", 64))},
		{name: "empty base URL", opt: withBootstrapBaseURL("")},
		{name: "nil http client", opt: withBootstrapHTTPClient(nil)},
		{name: "non-positive size limit", opt: withBootstrapMaxDownloadSize(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearBootstrapEnv(t)
			if _, err := EnsureIupSharedLibrary(tt.opt); err == nil {
				t.Error("expected option validation error")
			}
		})
	}
}

func TestEnsureWithExplicitLibraryPath(t *testing.T) {
	clearBootstrapEnv(t)

	dir := t.TempDir()
	libFile := filepath.Join(dir, "libiup.so")
	if err := os.WriteFile(libFile, []byte("fake"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := EnsureIupSharedLibrary(WithBootstrapLibraryPath(libFile))
	if err != nil {
		t.Fatalf("EnsureIupSharedLibrary failed: %v", err)
	}
	want, _ := filepath.Abs(libFile)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEnsureExplicitPathMissing(t *testing.T) {
	clearBootstrapEnv(t)

	missing := filepath.Join(t.TempDir(), "libiup.so")
	if _, err := EnsureIupSharedLibrary(WithBootstrapLibraryPath(missing)); err == nil {
		t.Error("expected error for missing explicit library path")
	}
}

func TestEnsureExplicitPathEmptyFile(t *testing.T) {
	clearBootstrapEnv(t)

	empty := filepath.Join(t.TempDir(), "libiup.so")
	if err := os.WriteFile(empty, nil, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureIupSharedLibrary(WithBootstrapLibraryPath(empty)); err == nil {
		t.Error("expected error for empty library file")
	}
}

func TestEnsureExplicitPathDirectory(t *testing.T) {
	clearBootstrapEnv(t)

	if _, err := EnsureIupSharedLibrary(WithBootstrapLibraryPath(t.TempDir())); err == nil {
		t.Error("expected error when explicit path is a directory")
	}
}

func TestEnsureDownloadsAndCaches(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact), &requests)
	cacheDir := t.TempDir()

	path, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, cacheDir)...)
	if err != nil {
		t.Fatalf("EnsureIupSharedLibrary failed: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected one download, got %d", requests.Load())
	}
	if filepath.Base(path) != artifact.primaryLibrary {
		t.Errorf("expected resolved path to name %s, got %q", artifact.primaryLibrary, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("resolved path does not exist: %v", err)
	}
	if !strings.HasPrefix(path, cacheDir) {
		t.Errorf("expected resolved path under cache dir %q, got %q", cacheDir, path)
	}

	// Second call resolves from cache without another download.
	again, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, cacheDir)...)
	if err != nil {
		t.Fatalf("cached EnsureIupSharedLibrary failed: %v", err)
	}
	if again != path {
		t.Errorf("expected cached path %q, got %q", path, again)
	}
	if requests.Load() != 1 {
		t.Errorf("expected cached resolution without download, got %d requests", requests.Load())
	}
}

func TestEnsureResolvesVersionedLibraryName(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)
	if artifact.archiveExtension != "tar.gz" {
		t.Skip("versioned library names only ship in tar archives")
	}

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact, artifact.primaryLibrary+".3.30"), &requests)

	path, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, t.TempDir())...)
	if err != nil {
		t.Fatalf("EnsureIupSharedLibrary failed: %v", err)
	}
	if filepath.Base(path) != artifact.primaryLibrary+".3.30" {
		t.Errorf("expected versioned library name to resolve, got %q", path)
	}
}

func TestEnsureConcurrentSingleDownload(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact), &requests)
	cacheDir := t.TempDir()

	const workers = 4
	paths := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = EnsureIupSharedLibrary(bootstrapTestOptions(server, cacheDir)...)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("worker %d resolved %q, want %q", i, paths[i], paths[0])
		}
	}
	if requests.Load() != 1 {
		t.Errorf("expected a single download across concurrent callers, got %d", requests.Load())
	}
}

func TestEnsureChecksumMatch(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	payload := buildIupArchive(t, artifact)
	sum := sha256.Sum256(payload)

	var requests atomic.Int32
	server := newArchiveServer(t, payload, &requests)

	opts := append(bootstrapTestOptions(server, t.TempDir()),
		WithBootstrapExpectedSHA256(hex.EncodeToString(sum[:])))
	if _, err := EnsureIupSharedLibrary(opts...); err != nil {
		t.Fatalf("expected checksum match to succeed, got %v", err)
	}
}

func TestEnsureChecksumMismatch(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact), &requests)

	opts := append(bootstrapTestOptions(server, t.TempDir()),
		WithBootstrapExpectedSHA256(strings.Repeat("0", 64)))
	_, err := EnsureIupSharedLibrary(opts...)
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
	if !strings.Contains(err.Error(), "checksum") {
		t.Errorf("expected checksum error, got %v", err)
	}
}

func TestEnsureDisableDownload(t *testing.T) {
	clearBootstrapEnv(t)
	hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, []byte("never served"), &requests)

	opts := append(bootstrapTestOptions(server, t.TempDir()),
		WithBootstrapDisableDownload(true))
	_, err := EnsureIupSharedLibrary(opts...)
	if err == nil {
		t.Fatal("expected error with downloads disabled and an empty cache")
	}
	if !strings.Contains(err.Error(), "download is disabled") {
		t.Errorf("unexpected error: %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("expected no requests, got %d", requests.Load())
	}
}

func TestEnsureDisableDownloadEnv(t *testing.T) {
	clearBootstrapEnv(t)
	hostArtifact(t)
	t.Setenv("IUP_DISABLE_DOWNLOAD", "1")

	var requests atomic.Int32
	server := newArchiveServer(t, []byte("never served"), &requests)

	_, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, t.TempDir())...)
	if err == nil {
		t.Fatal("expected error with IUP_DISABLE_DOWNLOAD set")
	}
	if requests.Load() != 0 {
		t.Errorf("expected no requests, got %d", requests.Load())
	}
}

func TestEnsureDisableDownloadCacheHit(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	cacheDir := t.TempDir()
	installDir := filepath.Join(cacheDir, artifact.archiveName("3.30"))
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	libFile := filepath.Join(installDir, artifact.primaryLibrary)
	if err := os.WriteFile(libFile, []byte("cached"), 0o755); err != nil {
		t.Fatal(err)
	}

	var requests atomic.Int32
	server := newArchiveServer(t, []byte("never served"), &requests)

	opts := append(bootstrapTestOptions(server, cacheDir),
		WithBootstrapDisableDownload(true))
	path, err := EnsureIupSharedLibrary(opts...)
	if err != nil {
		t.Fatalf("expected cache hit with downloads disabled, got %v", err)
	}
	want, _ := filepath.Abs(libFile)
	if path != want {
		t.Errorf("expected %q, got %q", want, path)
	}
}

func TestEnsureInvalidArchive(t *testing.T) {
	clearBootstrapEnv(t)
	hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, []byte("this is not an archive"), &requests)

	if _, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, t.TempDir())...); err == nil {
		t.Fatal("expected error for invalid archive payload")
	}
}

func TestEnsureHTTPError(t *testing.T) {
	clearBootstrapEnv(t)
	hostArtifact(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such release", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	_, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, t.TempDir())...)
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestEnsureDownloadSizeLimit(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact), &requests)

	opts := append(bootstrapTestOptions(server, t.TempDir()),
		withBootstrapMaxDownloadSize(16))
	_, err := EnsureIupSharedLibrary(opts...)
	if err == nil {
		t.Fatal("expected error for archive over the size limit")
	}
	if !strings.Contains(err.Error(), "size limit") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

func TestEnsureCleansTemporaryFiles(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	var requests atomic.Int32
	server := newArchiveServer(t, buildIupArchive(t, artifact), &requests)
	cacheDir := t.TempDir()

	if _, err := EnsureIupSharedLibrary(bootstrapTestOptions(server, cacheDir)...); err != nil {
		t.Fatalf("EnsureIupSharedLibrary failed: %v", err)
	}

	leftoverArchives, err := filepath.Glob(filepath.Join(cacheDir, "iup-*.archive"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftoverArchives) != 0 {
		t.Errorf("expected temporary archives to be removed, found %v", leftoverArchives)
	}

	leftoverStaging, err := filepath.Glob(filepath.Join(cacheDir, "*.staging-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftoverStaging) != 0 {
		t.Errorf("expected staging directories to be removed, found %v", leftoverStaging)
	}
}

func TestWithProcessFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), ".locks", "test.lock")

	ran := false
	if err := withProcessFileLock(lockPath, func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("withProcessFileLock failed: %v", err)
	}
	if !ran {
		t.Error("expected locked function to run")
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("expected lock file to exist: %v", err)
	}

	wantErr := fmt.Errorf("inner failure")
	if err := withProcessFileLock(lockPath, func() error { return wantErr }); err == nil {
		t.Error("expected inner error to propagate")
	}
}

func TestDefaultBootstrapCacheDir(t *testing.T) {
	dir := defaultBootstrapCacheDir()
	if dir == "" {
		t.Fatal("expected a non-empty default cache directory")
	}
	if filepath.Base(dir) != "iup" {
		t.Errorf("expected cache directory to end in iup, got %q", dir)
	}
}

func TestValidateLibraryFile(t *testing.T) {
	dir := t.TempDir()

	libFile := filepath.Join(dir, "libiup.so")
	if err := os.WriteFile(libFile, []byte("payload"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := validateLibraryFile(libFile)
	if err != nil {
		t.Fatalf("validateLibraryFile failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}

	if _, err := validateLibraryFile(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := validateLibraryFile(dir); err == nil {
		t.Error("expected error for directory path")
	}
	if _, err := validateLibraryFile(filepath.Join(dir, "missing.so")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLocateLibraryUsesBootstrapCache(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	cacheDir := t.TempDir()
	t.Setenv("IUP_CACHE_DIR", cacheDir)

	installDir := filepath.Join(cacheDir, artifact.archiveName(DefaultIupVersion))
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	libFile := filepath.Join(installDir, artifact.primaryLibrary)
	if err := os.WriteFile(libFile, []byte("cached"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := locateLibrary(artifact.primaryLibrary, "")
	want, _ := filepath.Abs(libFile)
	if got != want {
		t.Errorf("expected cached library %q, got %q", want, got)
	}
}

func TestCachedLibraryPathServesCompanionLibraries(t *testing.T) {
	clearBootstrapEnv(t)
	artifact := hostArtifact(t)

	cacheDir := t.TempDir()
	t.Setenv("IUP_CACHE_DIR", cacheDir)

	imageName := imageLibraryFileNameFor(runtime.GOOS)
	if got := cachedLibraryPath(imageName); got != "" {
		t.Errorf("expected no cache hit before install, got %q", got)
	}

	installDir := filepath.Join(cacheDir, artifact.archiveName(DefaultIupVersion))
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	imageFile := filepath.Join(installDir, imageName)
	if err := os.WriteFile(imageFile, []byte("cached"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := cachedLibraryPath(imageName)
	want, _ := filepath.Abs(imageFile)
	if got != want {
		t.Errorf("expected cached companion library %q, got %q", want, got)
	}

	// The loader picks the cached copy up for the image library too.
	if located := locateLibrary(imageName, ""); located != want {
		t.Errorf("expected locateLibrary to find cached copy %q, got %q", want, located)
	}
}
