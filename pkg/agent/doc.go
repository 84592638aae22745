// Package agent is the boundary to the conversational model session.
//
// It owns exactly three concerns: declaring the session once at mount
// (model, audio response modality, voice, system prompt, and the two
// schedule functions), surfacing inbound tool-call batches to a
// handler, and submitting the handler's structured responses back.
// Everything between those points — audio streaming, interruption,
// reconnection — belongs to the transport and is not replicated here.
//
// Usage:
//
//	sess, err := agent.NewSession(agent.DefaultConfig().WithAPIKey(key))
//	if err != nil {
//	    return err
//	}
//	sess.OnToolCalls(func(batch []agent.ToolCall) {
//	    sess.SubmitResponses(dispatcher.Handle(ctx, batch))
//	})
//	if err := sess.Start(ctx); err != nil {
//	    return err
//	}
//	defer sess.Stop()
package agent
