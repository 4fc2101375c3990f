// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import "errors"

// ErrNotFound is returned by Find and GetWithDeps when the requested
// (type, id) has no entry.
var ErrNotFound = errors.New("index: not found")

// ErrStale is returned by validateFreshness when the sidecar's recorded PBF size
// or modification time no longer matches the PBF file on disk. Open
// recovers from it by rebuilding; callers of Open never see it.
var ErrStale = errors.New("index: sidecar is stale")
