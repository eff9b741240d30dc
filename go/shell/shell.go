/*
Copyright 2025 The IJ Update Bot Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

type cmd struct {
	*exec.Cmd
	ctx context.Context
}

// NewContext returns a new command that can be run with the given context.
// Commands are logged at debug level to the context logger.
func NewContext(ctx context.Context, name string, arg ...string) *cmd {
	return &cmd{
		Cmd: exec.CommandContext(ctx, name, arg...),
		ctx: ctx,
	}
}

// InDir updates the working directory of the command and returns it.
//
// Must be called before running the command.
func (c *cmd) InDir(dir string) *cmd {
	c.Dir = dir
	return c
}

// WithExtraEnv appends to the environment of the current process for the
// command and returns it.
//
// Must be called before running the command.
func (c *cmd) WithExtraEnv(env ...string) *cmd {
	if c.Env == nil {
		c.Env = os.Environ()
	}
	c.Env = append(c.Env, env...)
	return c
}

func (c *cmd) String() string {
	return strings.Join(c.Args, " ")
}

// Run runs the command and returns an error, capturing stderr, if any.
func (c *cmd) Run() error {
	_, err := c.Output()
	return err
}

// Output runs the command and returns the output from stdout. If any error
// occurs, stderr is captured as well.
func (c *cmd) Output() ([]byte, error) {
	logger := zerolog.Ctx(c.ctx)
	logger.Debug().Str("dir", c.Dir).Msgf("Starting [%s]", c)

	out, err := c.Cmd.Output()
	if err != nil {
		logger.Debug().Err(err).Msgf("Failed [%s]", c)
		return nil, wrapErr(c.String(), err, out)
	}

	logger.Debug().Msgf("Finished [%s]", c)
	return out, nil
}

func wrapErr(command string, err error, out []byte) error {
	if execErr, ok := err.(*exec.ExitError); ok {
		err := fmt.Errorf("%s: %s\nstderr: %s", command, err.Error(), execErr.Stderr)
		if len(out) > 0 {
			err = fmt.Errorf("%s\nstdout: %s", err.Error(), out)
		}

		return err
	}

	return fmt.Errorf("%s: %w", command, err)
}
