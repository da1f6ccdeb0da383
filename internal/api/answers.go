package api

import (
	"strings"

	"tutor-client/pkg/api"
)

type cannedAnswer struct {
	keywords   []string
	answer     string
	confidence float64
	sources    []api.Source
	followups  []string
}

// The dev server answers from a small canned corpus keyed on question
// keywords. It only needs to be plausible enough to exercise the client.
var cannedAnswers = []cannedAnswer{
	{
		keywords: []string{"ros", "ros 2", "ros2"},
		answer: "ROS 2 is the second generation of the Robot Operating System, a middleware " +
			"framework for building robot applications. It replaces the centralized master of " +
			"ROS 1 with DDS-based discovery, adds quality-of-service profiles for real-time " +
			"communication, and supports multi-robot and embedded deployments.",
		confidence: 0.92,
		sources: []api.Source{
			{
				Title:          "Introduction to ROS 2",
				Chapter:        "Chapter 3: Robot Middleware",
				Section:        "3.1 The ROS 2 Architecture",
				RelevanceScore: 0.95,
				Snippet:        "ROS 2 builds on DDS to provide discovery, serialization and transport...",
				URL:            "/docs/middleware/ros2-architecture",
			},
		},
		followups: []string{
			"How do ROS 2 nodes communicate?",
			"What is a QoS profile?",
		},
	},
	{
		keywords: []string{"kinematics", "inverse kinematics", "forward kinematics"},
		answer: "Kinematics describes the motion of a robot's links without considering the " +
			"forces involved. Forward kinematics maps joint angles to end-effector pose; " +
			"inverse kinematics solves the reverse problem and generally admits multiple or " +
			"no solutions, which is why humanoid arms use numerical solvers with joint-limit " +
			"and singularity handling.",
		confidence: 0.88,
		sources: []api.Source{
			{
				Title:          "Manipulator Kinematics",
				Chapter:        "Chapter 5: Motion",
				Section:        "5.2 Forward and Inverse Kinematics",
				RelevanceScore: 0.9,
				Snippet:        "The forward kinematics of a serial chain follows from composing link transforms...",
				URL:            "/docs/motion/kinematics",
			},
		},
		followups: []string{
			"What is a kinematic singularity?",
			"How does a Jacobian-based IK solver work?",
		},
	},
	{
		keywords: []string{"sensor", "lidar", "imu", "camera"},
		answer: "Humanoid robots fuse several sensor modalities: IMUs for orientation and " +
			"balance, cameras for perception, LiDAR or depth cameras for mapping, and " +
			"joint encoders plus force/torque sensors for proprioception. Sensor fusion, " +
			"typically with Kalman-family filters, combines them into a consistent state " +
			"estimate.",
		confidence: 0.85,
		sources: []api.Source{
			{
				Title:          "Sensing for Humanoids",
				Chapter:        "Chapter 4: Perception",
				Section:        "4.1 Sensor Modalities",
				RelevanceScore: 0.87,
				URL:            "/docs/perception/sensors",
			},
		},
		followups: []string{
			"What does an IMU measure?",
			"How does sensor fusion work?",
		},
	},
}

const fallbackAnswer = "I couldn't find that topic in the curriculum. Try asking about ROS 2, " +
	"kinematics, sensing, or another chapter of the robotics textbook."

func lookupAnswer(question string) (cannedAnswer, bool) {
	q := strings.ToLower(question)
	for _, entry := range cannedAnswers {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry, true
			}
		}
	}
	return cannedAnswer{answer: fallbackAnswer, confidence: 0.2}, false
}
