// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package prompt

// Canned is a Prompter returning prepared answers in order, used when a run
// is driven by a script or a test
type Canned struct {
	Answers       []string
	Confirmations []bool
	Asked         []string
}

func (c *Canned) Ask(q Question) (string, error) {
	c.Asked = append(c.Asked, q.Message)

	if len(c.Answers) == 0 {
		return "", nil
	}

	ans := c.Answers[0]
	c.Answers = c.Answers[1:]

	return ans, nil
}

func (c *Canned) Confirm(message string, dflt bool) (bool, error) {
	c.Asked = append(c.Asked, message)

	if len(c.Confirmations) == 0 {
		return dflt, nil
	}

	ans := c.Confirmations[0]
	c.Confirmations = c.Confirmations[1:]

	return ans, nil
}
