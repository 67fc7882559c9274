package fx

import (
	"github.com/orgball2608/social-gallery-engine/internal/repositories/post"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
)
