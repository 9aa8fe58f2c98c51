package service

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/to404hanga/online_judge_autograder/executor/config"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const workDirInContainer = "/app"

var errRuntimeClosed = errors.New("docker runtime is closed")

// DockerRuntime evaluates expressions inside a pool of long-lived runtime
// containers. The workspace is copied into /app before each evaluation and
// copied back afterwards, so conversions show up on the host.
type DockerRuntime struct {
	client      *client.Client
	log         loggerv2.Logger
	image       string
	interpreter string
	poolSize    int
	memoryLimit int64

	mu   sync.Mutex
	pool chan string
}

var _ Runtime = (*DockerRuntime)(nil)

func NewDockerRuntime(log loggerv2.Logger, lang config.Language, poolSize, memoryLimitMB int) (Runtime, error) {
	cfg, ok := config.LanguageConfigs[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %q", lang)
	}
	c, err := client.New(client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	if _, err = c.Ping(context.Background(), client.PingOptions{}); err != nil {
		return nil, fmt.Errorf("failed to ping docker daemon: %w", err)
	}
	if poolSize <= 0 {
		poolSize = 1
	}
	return &DockerRuntime{
		client:      c,
		log:         log,
		image:       cfg.ImageName,
		interpreter: cfg.Interpreter,
		poolSize:    poolSize,
		memoryLimit: int64(memoryLimitMB) * 1024 * 1024,
	}, nil
}

func (r *DockerRuntime) Eval(ctx context.Context, dir, expr string) (string, error) {
	if err := r.ensureImage(ctx); err != nil {
		return "", fmt.Errorf("ensure image failed: %w", err)
	}

	workerID, err := r.acquireWorker(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire worker failed: %w", err)
	}
	healthy := true
	defer func() {
		r.releaseWorker(ctx, workerID, healthy)
	}()

	// a previous submission's files must not leak into this one
	reset := []string{"sh", "-c", "rm -rf " + workDirInContainer + " && mkdir -p " + workDirInContainer}
	if _, stderr, code, err := r.execWithAttach(ctx, workerID, reset, "/"); err != nil || code != 0 {
		healthy = false
		return "", fmt.Errorf("reset workdir failed: %v: %s", err, stderr)
	}

	if err = r.copyDirToContainer(ctx, workerID, workDirInContainer, dir); err != nil {
		healthy = false
		return "", fmt.Errorf("copy workspace failed: %w", err)
	}

	stdout, stderr, exitCode, err := r.execWithAttach(ctx, workerID, []string{r.interpreter, "-e", expr}, workDirInContainer)
	if err != nil {
		// an interrupted exec leaves the container in an unknown state
		healthy = false
		return stdout, fmt.Errorf("exec failed: %w", err)
	}

	if err = r.copyFromContainer(ctx, workerID, workDirInContainer, dir); err != nil {
		healthy = false
		return stdout, fmt.Errorf("copy workspace back failed: %w", err)
	}

	if exitCode != 0 {
		return stdout, fmt.Errorf("%s exited with code %d: %s", r.interpreter, exitCode, strings.TrimSpace(stderr))
	}
	return stdout, nil
}

func (r *DockerRuntime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool == nil {
		return nil
	}
	close(r.pool)
	for id := range r.pool {
		if _, err := r.client.ContainerStop(ctx, id, client.ContainerStopOptions{}); err != nil {
			r.log.ErrorContext(ctx, "stop container failed", logger.String("containerID", id), logger.Error(err))
		}
		if _, err := r.client.ContainerRemove(ctx, id, client.ContainerRemoveOptions{Force: true}); err != nil {
			r.log.ErrorContext(ctx, "remove container failed", logger.String("containerID", id), logger.Error(err))
		}
	}
	r.pool = nil
	return nil
}

func (r *DockerRuntime) ensureImage(ctx context.Context) error {
	filters := client.Filters{}
	filters.Add("reference", r.image)
	images, err := r.client.ImageList(ctx, client.ImageListOptions{
		Filters: filters,
	})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	if len(images.Items) > 0 {
		return nil
	}

	r.log.InfoContext(ctx, "Local image not found, pulling from registry", logger.String("image", r.image))
	reader, err := r.client.ImagePull(ctx, r.image, client.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

func (r *DockerRuntime) acquireWorker(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.pool == nil {
		pool := make(chan string, r.poolSize)
		for i := 0; i < r.poolSize; i++ {
			id, err := r.startWorkerContainer(ctx)
			if err != nil {
				r.mu.Unlock()
				return "", fmt.Errorf("start worker failed: %w", err)
			}
			pool <- id
		}
		r.pool = pool
	}
	pool := r.pool
	r.mu.Unlock()

	select {
	case id, ok := <-pool:
		if !ok {
			return "", errRuntimeClosed
		}
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *DockerRuntime) releaseWorker(ctx context.Context, id string, healthy bool) {
	ctx = context.WithoutCancel(ctx)
	if healthy && r.returnToPool(id) {
		return
	}
	if _, err := r.client.ContainerRemove(ctx, id, client.ContainerRemoveOptions{Force: true}); err != nil {
		r.log.ErrorContext(ctx, "remove worker failed", logger.String("containerID", id), logger.Error(err))
	}
	if healthy {
		// closed while the worker was busy
		return
	}
	// the old container may be wedged; replace it so the pool keeps its size
	newID, err := r.startWorkerContainer(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "restart worker failed", logger.Error(err))
		return
	}
	if !r.returnToPool(newID) {
		if _, err := r.client.ContainerRemove(ctx, newID, client.ContainerRemoveOptions{Force: true}); err != nil {
			r.log.ErrorContext(ctx, "remove worker failed", logger.String("containerID", newID), logger.Error(err))
		}
	}
}

// returnToPool hands id back to the pool, or reports false once the runtime
// is closed. A worker always came out of the pool, so the send never blocks.
func (r *DockerRuntime) returnToPool(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool == nil {
		return false
	}
	r.pool <- id
	return true
}

func (r *DockerRuntime) startWorkerContainer(ctx context.Context) (string, error) {
	cfg := &container.Config{
		Image:      r.image,
		Cmd:        []string{"sleep", "infinity"},
		WorkingDir: workDirInContainer,
	}
	host := &container.HostConfig{
		Resources: container.Resources{
			Memory:     r.memoryLimit,
			MemorySwap: -1,
			NanoCPUs:   1000000000,
		},
	}
	resp, err := r.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     cfg,
		HostConfig: host,
	})
	if err != nil {
		return "", err
	}
	if _, err := r.client.ContainerStart(ctx, resp.ID, client.ContainerStartOptions{}); err != nil {
		if _, rmErr := r.client.ContainerRemove(ctx, resp.ID, client.ContainerRemoveOptions{Force: true}); rmErr != nil {
			r.log.ErrorContext(ctx, "remove worker failed", logger.Error(rmErr))
		}
		return "", err
	}
	return resp.ID, nil
}

func (r *DockerRuntime) copyDirToContainer(ctx context.Context, containerID, containerDir, hostDir string) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	err := filepath.Walk(hostDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(hostDir, p)
		if err != nil {
			return err
		}
		target := path.Join(containerDir, filepath.ToSlash(rel))
		if info.IsDir() {
			return tw.WriteHeader(&tar.Header{
				Name:     target + "/",
				Mode:     0755,
				Typeflag: tar.TypeDir,
			})
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err = tw.WriteHeader(&tar.Header{
			Name: target,
			Mode: 0644,
			Size: int64(len(data)),
		}); err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	if err = tw.Close(); err != nil {
		return err
	}
	_, err = r.client.CopyToContainer(ctx, containerID, client.CopyToContainerOptions{
		AllowOverwriteDirWithFile: true,
		DestinationPath:           "/",
		Content:                   bytes.NewReader(buf.Bytes()),
	})
	return err
}

// copyFromContainer mirrors srcPath (a directory) into hostDestDir. The
// archive is rooted at the base name of srcPath, which is stripped.
func (r *DockerRuntime) copyFromContainer(ctx context.Context, containerID, srcPath, hostDestDir string) error {
	resp, err := r.client.CopyFromContainer(ctx, containerID, client.CopyFromContainerOptions{
		SourcePath: srcPath,
	})
	if err != nil {
		return err
	}
	defer resp.Content.Close()

	root := path.Base(srcPath)
	tr := tar.NewReader(resp.Content)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path.Clean(hdr.Name), root), "/")
		if rel == "" || strings.HasPrefix(rel, "..") {
			continue
		}
		target := filepath.Join(hostDestDir, filepath.FromSlash(rel))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return err
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return err
			}
		}
	}
}

func (r *DockerRuntime) execWithAttach(ctx context.Context, containerID string, cmd []string, workDir string) (string, string, int, error) {
	created, err := r.client.ExecCreate(ctx, containerID, client.ExecCreateOptions{
		Cmd:          cmd,
		WorkingDir:   workDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", "", -1, err
	}
	attach, err := r.client.ExecAttach(ctx, created.ID, client.ExecAttachOptions{})
	if err != nil {
		return "", "", -1, err
	}
	defer attach.Close()

	stdout, stderr, err := collectOutput(ctx, attach.Reader, attach.Close)
	if err != nil {
		return stdout, stderr, -1, err
	}

	inspect, err := r.client.ExecInspect(ctx, created.ID, client.ExecInspectOptions{})
	if err != nil {
		return stdout, stderr, -1, err
	}
	return stdout, stderr, inspect.ExitCode, nil
}

// collectOutput demultiplexes an attached exec stream. When ctx ends first the
// stream is closed and the copy drained before the buffers are read.
func collectOutput(ctx context.Context, stream io.Reader, closeStream func()) (string, string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, stream)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && err != io.EOF {
			return stdoutBuf.String(), stderrBuf.String(), err
		}
		return stdoutBuf.String(), stderrBuf.String(), nil
	case <-ctx.Done():
		closeStream()
		<-done
		return stdoutBuf.String(), stderrBuf.String(), ctx.Err()
	}
}
