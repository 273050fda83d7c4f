package orchestrate

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// IREmitter is the external collaborator that turns one CompileJob
// into emitted IR on disk, writing captured stderr to job.StderrPath
// and returning the invoked compiler's exit code. The core never
// invokes a real compiler directly; a concrete embedding supplies this.
type IREmitter interface {
	Emit(ctx context.Context, job CompileJob) (exitCode int, err error)
}

// RunJobs emits IR for every non-cached job under a semaphore bounding
// concurrency to hardware parallelism (or len(jobs), whichever is
// smaller), then returns results in job order. IR parsing itself stays
// serial in the caller, since the IR context a parser builds on is not
// thread-safe.
func RunJobs(ctx context.Context, jobs []CompileJob, emitter IREmitter) []JobResult {
	results := make([]JobResult, len(jobs))

	maxWorkers := runtime.GOMAXPROCS(0)
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > len(jobs) {
		maxWorkers = len(jobs)
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	sem := semaphore.NewWeighted(int64(maxWorkers))
	done := make(chan int, len(jobs))

	for i, job := range jobs {
		if job.Cached {
			results[i] = JobResult{Job: job, ExitCode: 0}
			done <- i
			continue
		}

		go func(i int, job CompileJob) {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = JobResult{Job: job, ExitCode: -1, Err: err}
				done <- i
				return
			}
			defer sem.Release(1)

			exitCode, err := emitter.Emit(ctx, job)
			results[i] = JobResult{Job: job, ExitCode: exitCode, Err: err}
			done <- i
		}(i, job)
	}

	for range jobs {
		<-done
	}

	return results
}

// DedupeCompilers returns one CompilerInfo per distinct compiler path
// across jobs, in first-seen order, for reporting compiler provenance
// without duplicates.
func DedupeCompilers(jobs []CompileJob, versionOf func(path string) string) []CompilerInfo {
	seen := make(map[string]bool)
	var out []CompilerInfo
	for _, j := range jobs {
		if seen[j.CompilerPath] {
			continue
		}
		seen[j.CompilerPath] = true
		version := ""
		if versionOf != nil {
			version = versionOf(j.CompilerPath)
		}
		out = append(out, CompilerInfo{Path: j.CompilerPath, Version: version})
	}
	return out
}
