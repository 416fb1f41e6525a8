package judge

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Coalesce wraps j so that concurrent identical requests share one model
// call. The shared call ignores the first caller's cancellation but keeps its
// deadline; each caller still stops waiting when its own context ends.
func Coalesce(j Judge) Judge {
	return &coalesced{next: j}
}

type coalesced struct {
	next  Judge
	group singleflight.Group
}

func (c *coalesced) Judge(ctx context.Context, req *Request) (*Verdict, error) {
	ch := c.group.DoChan(requestKey(req), func() (any, error) {
		shared := context.WithoutCancel(ctx)
		if dl, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			shared, cancel = context.WithDeadline(shared, dl)
			defer cancel()
		}
		return c.next.Judge(shared, req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		verdict, _ := res.Val.(*Verdict)
		if verdict == nil {
			return nil, ErrMalformed
		}
		out := *verdict
		return &out, nil
	}
}

func requestKey(req *Request) string {
	return strings.Join([]string{
		req.UserAnswer,
		req.CorrectAnswer,
		req.TargetWord,
		req.WordType,
		req.Direction.String(),
		req.TargetLanguage.String(),
		req.NativeLanguage.String(),
	}, "\x00")
}
